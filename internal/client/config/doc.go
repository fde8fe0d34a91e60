// Package config loads runtime configuration for the pinboard CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed PINBOARD_, optionally read from a .env
//     file in the working directory.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags.
//
// Flags
//
//	-s string     backend base URL (PINBOARD_SERVER_URL)
//	-d string     local database path (PINBOARD_DATABASE_PATH)
//	-t duration   per-request timeout (PINBOARD_REQUEST_TIMEOUT)
//	-ttl duration lifetime of a remembered login (PINBOARD_SESSION_TTL)
//	-r float      outbound requests per second, 0 for unlimited (PINBOARD_REQUESTS_PER_SECOND)
//	-l string     log level: debug, info, warn, error (PINBOARD_LOG_LEVEL)
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "database_path": "pinboard.db",
//	  "request_timeout": "10s",
//	  "session_ttl": "168h",
//	  "requests_per_second": 10,
//	  "log_level": "info"
//	}
package config
