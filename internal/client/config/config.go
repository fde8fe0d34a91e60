package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
)

type Config struct {
	ServerURL         string
	DatabasePath      string
	RequestTimeout    time.Duration
	SessionTTL        time.Duration
	RequestsPerSecond float64
	LogLevel          string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = common.DefaultServerURL
	c.DatabasePath = "pinboard.db"
	c.RequestTimeout = 10 * time.Second
	c.SessionTTL = 7 * 24 * time.Hour
	c.RequestsPerSecond = 10
	c.LogLevel = "info"
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %g", c.RequestsPerSecond)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the environment, an optional
// JSON file and args (usually os.Args[1:]), in that order.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
