package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avelichka/lectern/internal/flagx"
	"github.com/avelichka/lectern/internal/timex"
)

// JsonConfig is the DTO used only for reading JSON configuration files.
// Duration fields use timex.Duration so both "30s" strings and integer
// nanoseconds parse; after unmarshalling, values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	Token        string         `json:"token"`
	Principal    string         `json:"principal"`
	DatabasePath string         `json:"database_path"`
	SyncTimeout  timex.Duration `json:"sync_timeout"`
	CacheMaxAge  timex.Duration `json:"cache_max_age"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into cfg. If no file is named, nothing happens; if the
// file cannot be read or parsed, the function panics (a broken explicit
// config is a startup error, not something to limp past).
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.Principal != "" {
		cfg.Principal = jc.Principal
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SyncTimeout.Duration != 0 {
		cfg.SyncTimeout = time.Duration(jc.SyncTimeout.Duration)
	}
	if jc.CacheMaxAge.Duration != 0 {
		cfg.CacheMaxAge = time.Duration(jc.CacheMaxAge.Duration)
	}
}
