// Package config handles configuration for the client engine, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Lectern client engine.
//
// Fields:
//   - ServerURL: base URL of the reconciliation endpoint.
//   - Token: bearer token presented on POST /sync.
//   - Principal: identity stamped on locally recorded mutations.
//   - DatabasePath: path of the local SQLite store (cache + queue).
//   - SyncTimeout: hard bound on one reconciliation round-trip.
//   - CacheMaxAge: age-based cache eviction horizon; 0 disables pruning.
type Config struct {
	ServerURL    string        `env:"LECTERN_SERVER_URL"`
	Token        string        `env:"LECTERN_TOKEN"`
	Principal    string        `env:"LECTERN_PRINCIPAL"`
	DatabasePath string        `env:"LECTERN_DB_PATH"`
	SyncTimeout  time.Duration `env:"LECTERN_SYNC_TIMEOUT"`
	CacheMaxAge  time.Duration `env:"LECTERN_CACHE_MAX_AGE"`
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabasePath = "lectern.db"
	c.SyncTimeout = 30 * time.Second
	c.CacheMaxAge = 90 * 24 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
