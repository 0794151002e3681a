// Package server initializes and runs the room document store server.
// It selects the storage backend, wires change fan-out, starts the gRPC and
// metrics endpoints, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/dmitrijs2005/roomchat/internal/server/config"
	"github.com/dmitrijs2005/roomchat/internal/server/listener"
	"github.com/dmitrijs2005/roomchat/internal/server/metrics"
	"github.com/dmitrijs2005/roomchat/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/roomchat/internal/server/services"

	gs "github.com/dmitrijs2005/roomchat/internal/server/grpc"
)

var newPostgresManager = func(dsn string) (*repomanager.PostgresRepositoryManager, error) {
	return repomanager.NewPostgresRepositoryManager(dsn)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	hub      *services.Hub
	store    *services.DocStore
	sessions *services.Sessions
	exporter gs.Exporter
	metrics  *metrics.Metrics

	// listener is nil in in-memory mode, where the hub is notified
	// directly.
	listener *listener.Listener
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))

	app := &App{
		config:   c,
		logger:   logger,
		hub:      services.NewHub(),
		sessions: services.NewSessions(c.SecretKey, c.SessionTokenValidityDuration),
		metrics:  metrics.New(),
	}

	opts := []services.DocStoreOption{services.WithMetrics(app.metrics)}

	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "No database configured, keeping rooms in memory")
		app.repos = repomanager.NewInMemoryRepositoryManager()
	} else {
		pm, err := newPostgresManager(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := pm.RunMigrations(ctx); err != nil {
			_ = pm.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		app.repos = pm
		app.listener = listener.New(c.DatabaseDSN, app.hub, logger)
		opts = append(opts, services.WithNotifier(listener.NewNotifier(pm.Conn())))
	}

	app.store = services.NewDocStore(app.repos, app.hub, logger, opts...)

	if c.S3Bucket != "" {
		app.exporter = services.NewArchiver(app.store, c)
	}

	return app, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.store, app.sessions, app.exporter, gs.Options{
		WriteRate:  app.config.WriteRate,
		WriteBurst: app.config.WriteBurst,
		Metrics:    app.metrics,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.metrics.Serve(ctx, app.config.MetricsAddr, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startListener(ctx context.Context) {
	if err := app.listener.Run(ctx); err != nil {
		app.logger.Error(ctx, "change listener stopped", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "grpc", app.config.EndpointAddrGRPC, "metrics", app.config.MetricsAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	if app.listener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startListener(ctx)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
