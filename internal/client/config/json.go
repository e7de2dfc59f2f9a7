package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/littlex/internal/flagx"
	"github.com/dmitrijs2005/littlex/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "60s" or as integer nanoseconds. Pointer fields distinguish
// "absent" from "zero" so a partial file only overrides what it names.
type JsonConfig struct {
	APIURL         *string         `json:"api_url"`
	StoreBackend   *string         `json:"store_backend"`
	DBPath         *string         `json:"db_path"`
	RedisAddr      *string         `json:"redis_addr"`
	RedisPrefix    *string         `json:"redis_prefix"`
	WarningBefore  *timex.Duration `json:"warning_before"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	NoticeLogCap   *int            `json:"notice_log_cap"`
	MetricsAddr    *string         `json:"metrics_addr"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config in args. Without either flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config %s: %w", jsonConfigFile, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	assign(&cfg.APIURL, jc.APIURL)
	assign(&cfg.StoreBackend, jc.StoreBackend)
	assign(&cfg.DBPath, jc.DBPath)
	assign(&cfg.RedisAddr, jc.RedisAddr)
	assign(&cfg.RedisPrefix, jc.RedisPrefix)
	assign(&cfg.NoticeLogCap, jc.NoticeLogCap)
	assign(&cfg.MetricsAddr, jc.MetricsAddr)
	assign(&cfg.LogLevel, jc.LogLevel)
	if jc.WarningBefore != nil {
		cfg.WarningBefore = jc.WarningBefore.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
