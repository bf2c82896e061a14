package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MarketBluff/internal/domain/repository"
	"MarketBluff/internal/usecase"
	"MarketBluff/pkg/cache"
	"MarketBluff/pkg/config"
	xhttp "MarketBluff/pkg/http"
	applogger "MarketBluff/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	refresher  *usecase.UniverseRefresher
	store      cache.Store
	publisher  repository.SummaryPublisher
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	refresher *usecase.UniverseRefresher,
	store cache.Store,
	publisher repository.SummaryPublisher,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		refresher:  refresher,
		store:      store,
		publisher:  publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.refresher.Start(a.cfg.Schedule.UniverseWarmup); err != nil {
		a.log.Error("universe refresher start error", applogger.Error(err))
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		a.refresher.Stop()
		return err
	}
	a.log.Info("http server started",
		applogger.String("host", a.cfg.Server.Host),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	<-ctx.Done()

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.refresher.Stop()

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.publisher.Close(); err != nil {
		a.log.Warn("summary publisher close error", applogger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
