package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays LECTERN_* environment variables onto cfg. Unset
// variables leave the current values untouched.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
