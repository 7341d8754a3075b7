package config

import (
	"flag"
	"os"
	"time"

	"github.com/avelichka/lectern/internal/flagx"
)

// parseFlags populates selected client Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-a string   reconciliation endpoint base URL
//	-k string   bearer token
//	-u string   principal recorded on local mutations
//	-d string   local database path
//	-t int      sync timeout, seconds
//	-e int      cache max age, hours (0 disables pruning)
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-u", "-d", "-t", "-e"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "reconciliation endpoint base URL")
	fs.StringVar(&cfg.Token, "k", cfg.Token, "bearer token")
	fs.StringVar(&cfg.Principal, "u", cfg.Principal, "principal")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")

	syncTimeout := fs.Int("t", int(cfg.SyncTimeout.Seconds()), "sync timeout (in seconds)")
	cacheMaxAge := fs.Int("e", int(cfg.CacheMaxAge.Hours()), "cache max age (in hours, 0 disables pruning)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncTimeout = time.Duration(*syncTimeout) * time.Second
	cfg.CacheMaxAge = time.Duration(*cacheMaxAge) * time.Hour
}
