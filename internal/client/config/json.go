package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/pinboard/internal/flagx"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// JsonConfig mirrors Config for unmarshalling. Pointer fields distinguish
// "absent" from a zero value so a partial file only overrides what it names.
type JsonConfig struct {
	ServerURL         *string         `json:"server_url"`
	DatabasePath      *string         `json:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	SessionTTL        *timex.Duration `json:"session_ttl"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	LogLevel          *string         `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
