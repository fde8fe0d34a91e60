package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/pinboard/internal/flagx"
)

// parseFlags overlays cfg with the flags it knows; other arguments (such as
// -c) are left for their own parsers.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("pinboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.DurationVar(&cfg.SessionTTL, "ttl", cfg.SessionTTL, "lifetime of a remembered login")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "outbound requests per second (0 = unlimited)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, "s", "d", "t", "ttl", "r", "l"))
}
