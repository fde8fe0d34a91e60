package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "PINBOARD_"

var lookupEnv = os.LookupEnv

// loadDotEnv exports the variables of path into the process environment
// without overriding ones already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return v, ok && v != ""
	}

	if v, ok := get("SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := get("DATABASE_PATH"); ok {
		cfg.DatabasePath = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREQUEST_TIMEOUT: %w", envPrefix, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := get("SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sSESSION_TTL: %w", envPrefix, err)
		}
		cfg.SessionTTL = d
	}
	if v, ok := get("REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		cfg.RequestsPerSecond = f
	}
	return nil
}
