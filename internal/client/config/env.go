package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	envAPIURL         = "LITTLEX_API_URL"
	envStoreBackend   = "LITTLEX_STORE"
	envDBPath         = "LITTLEX_DB_PATH"
	envRedisAddr      = "LITTLEX_REDIS_ADDR"
	envRedisPrefix    = "LITTLEX_REDIS_PREFIX"
	envWarningBefore  = "LITTLEX_WARNING_BEFORE"
	envRequestTimeout = "LITTLEX_REQUEST_TIMEOUT"
	envNoticeLogCap   = "LITTLEX_NOTICE_LOG_CAP"
	envMetricsAddr    = "LITTLEX_METRICS_ADDR"
	envLogLevel       = "LITTLEX_LOG_LEVEL"
)

// parseEnv overlays Config with LITTLEX_* environment variables. Unset
// variables leave the current value alone; durations use Go syntax ("90s").
func parseEnv(cfg *Config) error {
	setString(&cfg.APIURL, envAPIURL)
	setString(&cfg.StoreBackend, envStoreBackend)
	setString(&cfg.DBPath, envDBPath)
	setString(&cfg.RedisAddr, envRedisAddr)
	setString(&cfg.RedisPrefix, envRedisPrefix)
	setString(&cfg.MetricsAddr, envMetricsAddr)
	setString(&cfg.LogLevel, envLogLevel)

	if err := setDuration(&cfg.WarningBefore, envWarningBefore); err != nil {
		return err
	}
	if err := setDuration(&cfg.RequestTimeout, envRequestTimeout); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(envNoticeLogCap); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envNoticeLogCap, err)
		}
		cfg.NoticeLogCap = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
