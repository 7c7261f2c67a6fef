package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := observability.NewLogger(cfg.Logger,
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.App.Env),
		)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// storage is the repository pair for the configured driver plus the probes
// and cleanup that come with it.
type storage struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	probes  map[string]handlers.Pinger
	closers []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	st := &storage{probes: map[string]handlers.Pinger{}}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		st.closers = append(st.closers, pg.Close)
		st.probes["postgres"] = pg
		st.tickets = repository.NewTicketRepository(pg.Pool)
		st.users = repository.NewUserRepository(pg.Pool)
	case config.StorageSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		st.closers = append(st.closers, db.Close)
		st.probes["sqlite"] = db
		st.tickets = repository.NewSQLiteTicketRepository(db.DB)
		st.users = repository.NewSQLiteUserRepository(db.DB)
	default:
		store := repository.NewMemoryStore()
		st.tickets = store.Tickets()
		st.users = store.Users()
		logger.Warn("using in-memory storage; data is lost on restart")
	}

	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		st.closers = append(st.closers, redis.Close)
		st.probes["redis"] = redis
	}
	return st, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("helpdesk")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartEventRecorder(service.NewEventRecorder(dispatcher, logger, metrics))

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: st.tickets,
		UserRepo:   st.users,
		Dispatcher: dispatcher,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   st.users,
		Dispatcher: dispatcher,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:           logger,
		Metrics:          metrics,
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	routes := httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, st.probes),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Users:   handlers.NewUsersHandler(userService),
	}
	if metrics != nil {
		routes.Metrics = metrics.Handler()
		routes.MetricsPath = cfg.Metrics.Path
	}
	httptransport.RegisterRoutes(app, routes)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	}
	return app.Shutdown()
}
