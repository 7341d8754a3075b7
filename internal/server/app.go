// Package server initializes and runs the reconciliation server. It wires
// the Postgres store, the record service, and the HTTP endpoint, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelichka/lectern/internal/logging"
	"github.com/avelichka/lectern/internal/server/config"
	"github.com/avelichka/lectern/internal/server/httpapi"
	"github.com/avelichka/lectern/internal/server/records"
	"github.com/avelichka/lectern/internal/server/store"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	storeManager  *store.Manager
	recordService *records.Service
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	m, err := store.NewManager(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rs := records.NewService(m.Records(), logger)

	return &App{config: c, logger: logger, storeManager: m, recordService: rs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	mux := http.NewServeMux()
	api := httpapi.NewServer(app.recordService, app.logger, []byte(app.config.SecretKey))
	api.RegisterRoutes(mux)

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Listening", "addr", app.config.EndpointAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}

	if err := app.storeManager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "Server stopped")
	return nil
}
