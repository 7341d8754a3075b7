// Package cli is the interactive shell around the client sync engine. It
// wires the local store, connectivity monitor, syncer and trigger, and
// exposes them as REPL commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/avelichka/lectern/internal/client/cache"
	"github.com/avelichka/lectern/internal/client/config"
	"github.com/avelichka/lectern/internal/client/connectivity"
	"github.com/avelichka/lectern/internal/client/reconcile"
	"github.com/avelichka/lectern/internal/client/service"
	"github.com/avelichka/lectern/internal/client/store"
	"github.com/avelichka/lectern/internal/client/trigger"
	"github.com/avelichka/lectern/internal/logging"
)

type App struct {
	config  *config.Config
	store   *store.Store
	monitor *connectivity.Monitor
	trigger *trigger.Trigger
	service service.Service
	logger  logging.Logger
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewTextHandler(os.Stderr, nil))
	logger := logging.NewSlogLogger(sl)

	st, err := store.Open(ctx, c.DatabasePath, cache.DefaultAllowlist())
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	monitor := connectivity.NewMonitor()
	apiClient := reconcile.NewClient(c.ServerURL, c.Token, c.SyncTimeout)
	syncer := reconcile.NewSyncer(st.Queue, st.Cache, apiClient, logger,
		reconcile.Options{CacheMaxAge: c.CacheMaxAge})
	trig := trigger.New(monitor, syncer, logger)
	svc := service.New(st.Queue, st.Cache, monitor, trig, logger, c.Principal)

	return &App{
		config:  c,
		store:   st,
		monitor: monitor,
		trigger: trig,
		service: svc,
		logger:  logger,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.trigger.Run(ctx)

	a.Root(ctx)
}
