package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "Test1 OK", args: []string{"-a", "http://api:9090", "-w", "120"}, expectErr: false,
			expected: &Config{APIURL: "http://api:9090", WarningBefore: 120 * time.Second}},
		{name: "Test2 all flags", args: []string{"-a", "u", "-s", "redis", "-d", "x.db", "-r", "redis:1", "-w", "5", "-m", ":9100", "-l", "debug"},
			expected: &Config{APIURL: "u", StoreBackend: "redis", DBPath: "x.db", RedisAddr: "redis:1",
				WarningBefore: 5 * time.Second, MetricsAddr: ":9100", LogLevel: "debug"}},
		{name: "Test3 foreign flags ignored", args: []string{"-c", "cfg.json", "-a", "u", "--verbose"},
			expected: &Config{APIURL: "u"}},
		{name: "Test4 incorrect warning interval", args: []string{"-a", "u", "-w", "abc"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsUnsetValues(t *testing.T) {
	c := defaults()
	require.NoError(t, parseFlags(&c, []string{"-d", "other.db"}))

	want := defaults()
	want.DBPath = "other.db"
	assert.Empty(t, cmp.Diff(want, c))
}
