package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/api/client"
	"github.com/fastygo/stockdesk/internal/cli"
	"github.com/fastygo/stockdesk/internal/config"
	boltInfra "github.com/fastygo/stockdesk/internal/infrastructure/bolt"
	"github.com/fastygo/stockdesk/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/stockdesk/internal/infrastructure/redis"
	"github.com/fastygo/stockdesk/internal/services/keeper"
	"github.com/fastygo/stockdesk/internal/services/lifecycle"
	"github.com/fastygo/stockdesk/pkg/logger"
	"github.com/fastygo/stockdesk/repository"
	boltRepo "github.com/fastygo/stockdesk/repository/bolt"
	redisRepo "github.com/fastygo/stockdesk/repository/redis"
	"github.com/fastygo/stockdesk/usecase/catalog"
	"github.com/fastygo/stockdesk/usecase/preferences"
	"github.com/fastygo/stockdesk/usecase/report"
	"github.com/fastygo/stockdesk/usecase/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Output:   cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.WithSignals(context.Background())
	defer cancel()

	state, err := openState(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open state backend", zap.String("backend", cfg.State.Backend), zap.Error(err))
	}

	api := client.New(client.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		MaxConnsPerHost: cfg.API.MaxConns,
		UserAgent:       cfg.AppName,
		Breaker: client.BreakerConfig{
			Name:         "inventory-api",
			MaxRequests:  cfg.Breaker.MaxRequests,
			Interval:     cfg.Breaker.Interval,
			Timeout:      cfg.Breaker.Timeout,
			FailureRatio: cfg.Breaker.FailureRatio,
			MinRequests:  cfg.Breaker.MinRequests,
		},
	}, zapLogger)

	mon := monitor.New(zapLogger)
	mon.Add("api", cfg.API.Timeout, api.Health)
	mon.Add(cfg.State.Backend, 3*time.Second, state.probe)

	sessionStore := session.New(api, state.sessions, zapLogger)
	if err := sessionStore.Restore(appCtx); err != nil {
		zapLogger.Warn("starting without a stored session", zap.Error(err))
	}
	prefsStore := preferences.New(state.preferences, zapLogger)
	if err := prefsStore.Restore(appCtx); err != nil {
		zapLogger.Warn("starting without stored preferences", zap.Error(err))
	}

	catalogStore := catalog.New(api, sessionStore, cfg.Catalog.PageSize, zapLogger)

	orchestrator := report.New(api, api, sessionStore, prefsStore, printNotifier(os.Stdout), zapLogger, report.Config{
		ScanPageSize: cfg.Report.ScanPageSize,
		ConfirmTTL:   cfg.Report.ConfirmTTL,
	})
	manager.Register("report_confirmation", func(ctx context.Context) error {
		orchestrator.Stop()
		return nil
	})

	sessionKeeper := keeper.New(sessionStore, zapLogger, keeper.Config{
		Interval: cfg.Session.ValidateInterval,
		Timeout:  cfg.API.Timeout,
	})
	manager.Register("session_keeper", func(ctx context.Context) error {
		sessionKeeper.Stop(ctx)
		return nil
	})

	app := &cli.App{
		Session:     sessionStore,
		Catalog:     catalogStore,
		Reports:     orchestrator,
		Preferences: prefsStore,
		Keeper:      sessionKeeper,
		Monitor:     mon,
		Out:         os.Stdout,
		Logger:      zapLogger,
	}
	dispatcher := app.Dispatcher()

	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintf(os.Stdout, "usage: %s <command> [flags]\n\n", cfg.AppName)
		dispatcher.Usage(os.Stdout)
		_ = manager.Shutdown(context.Background())
		return
	}

	runErr := dispatcher.Execute(appCtx, args)

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		zapLogger.Sync()
		os.Exit(1)
	}
}

type stateBackend struct {
	sessions    repository.SessionRepository
	preferences repository.PreferencesRepository
	probe       monitor.Probe
}

// openState opens the configured backend and registers its close hook.
func openState(
	ctx context.Context,
	cfg *config.Config,
	manager *lifecycle.Manager,
	zapLogger *zap.Logger,
) (*stateBackend, error) {
	switch cfg.State.Backend {
	case config.BackendRedis:
		redisClient, err := redisInfra.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		zapLogger.Debug("using redis state backend", zap.String("prefix", cfg.Redis.KeyPrefix))
		return &stateBackend{
			sessions:    redisRepo.NewSessionRepository(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.SessionTTL),
			preferences: redisRepo.NewPreferencesRepository(redisClient, cfg.Redis.KeyPrefix),
			probe:       redisInfra.HealthCheck(redisClient),
		}, nil
	default:
		store, err := boltInfra.Open(cfg.State.BoltPath, "state")
		if err != nil {
			return nil, err
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return store.Close()
		})
		zapLogger.Debug("using bolt state backend", zap.String("path", store.Path()))
		return &stateBackend{
			sessions:    boltRepo.NewSessionRepository(store),
			preferences: boltRepo.NewPreferencesRepository(store),
			probe: func(context.Context) (string, error) {
				n, err := store.Size()
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s, %d keys", store.Path(), n), nil
			},
		}, nil
	}
}

func printNotifier(w io.Writer) report.Notifier {
	return report.NotifierFunc(func(n report.Notification) {
		prefix := "ok"
		if n.Level == report.LevelError {
			prefix = "!!"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", prefix, n.Title, n.Description)
	})
}
