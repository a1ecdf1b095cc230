package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/factorylink/internal/api"
	"github.com/lalith-99/factorylink/internal/auth"
	"github.com/lalith-99/factorylink/internal/config"
	"github.com/lalith-99/factorylink/internal/db"
	"github.com/lalith-99/factorylink/internal/gateway"
	"github.com/lalith-99/factorylink/internal/notify"
	"github.com/lalith-99/factorylink/internal/observ"
	"github.com/lalith-99/factorylink/internal/repository"
	"github.com/lalith-99/factorylink/internal/repository/memory"
	"github.com/lalith-99/factorylink/internal/repository/postgres"
	"github.com/lalith-99/factorylink/internal/service/activity"
	"github.com/lalith-99/factorylink/internal/service/feedback"
	"github.com/lalith-99/factorylink/internal/service/messaging"
	"github.com/lalith-99/factorylink/internal/service/profile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// repos is the store selected by DATABASE_DRIVER.
type repos struct {
	profiles repository.ProfileRepository
	links    repository.ManagerWorkerRepository
	messages repository.MessageRepository
	logs     repository.MonitoringLogRepository
	feedback repository.FeedbackRepository
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Config and logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 2. Storage
	// ---------------------------------------------------------------
	health := map[string]api.Pinger{}
	var r repos

	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.New()
		r = repos{
			profiles: store.Profiles(),
			links:    store.ManagerWorkers(),
			messages: store.Messages(),
			logs:     store.MonitoringLogs(),
			feedback: store.Feedbacks(),
		}
	default:
		database, err := db.New(ctx, db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
		}

		pool := database.Pool()
		r = repos{
			profiles: postgres.NewProfileStore(pool),
			links:    postgres.NewManagerWorkerStore(pool),
			messages: postgres.NewMessageStore(pool),
			logs:     postgres.NewMonitoringLogStore(pool),
			feedback: postgres.NewFeedbackStore(pool),
		}
		health["postgres"] = database
	}

	// ---------------------------------------------------------------
	// 3. Notifier: Redis when configured, otherwise in-process.
	// ---------------------------------------------------------------
	var notifier notify.Notifier
	if cfg.RedisURL != "" {
		rn, err := notify.NewRedisNotifier(cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("create redis notifier: %w", err)
		}
		defer rn.Close()
		if err := rn.Health(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		notifier = rn
		health["redis"] = rn
	} else {
		notifier = notify.NewLocalNotifier()
	}

	// ---------------------------------------------------------------
	// 4. Services and handlers
	// ---------------------------------------------------------------
	identity := auth.ContextProvider{}

	messagingSvc := messaging.New(r.messages, r.profiles, identity, notifier, cfg.Inbox.PageSize, logger)
	activitySvc := activity.New(r.logs, identity, logger)
	feedbackSvc := feedback.New(r.feedback, identity, logger)
	profileSvc := profile.New(r.profiles, r.links, identity, logger)

	assistant := gateway.New(gateway.Config{
		URL:     cfg.Gateway.URL,
		APIKey:  cfg.Gateway.APIKey,
		Model:   cfg.Gateway.Model,
		Timeout: cfg.Gateway.Timeout,
	}, logger)

	tokens := auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.JWTIssuer,
		TTL:    cfg.Auth.TokenTTL,
	}

	router := api.NewRouter(logger, cfg.Auth.JWTSecret, api.Handlers{
		Health:    api.NewHealthHandler(health, logger),
		Auth:      api.NewAuthHandler(r.profiles, activitySvc, tokens, logger),
		Profiles:  api.NewProfileHandler(profileSvc, logger),
		Manager:   api.NewManagerHandler(profileSvc, logger),
		Messages:  api.NewMessageHandler(messagingSvc, logger),
		Activity:  api.NewActivityHandler(activitySvc, logger),
		Feedback:  api.NewFeedbackHandler(feedbackSvc, logger),
		Assistant: api.NewAssistantHandler(assistant, logger),
		Stream:    api.NewStreamHandler(notifier, activitySvc, cfg.Activity.Interval, logger),
	})

	// ---------------------------------------------------------------
	// 5. Serve until a signal, then drain.
	// ---------------------------------------------------------------
	// Request contexts derive from ctx so open inbox streams, which
	// Shutdown does not track, end on the same signal.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting factorylink",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("database", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
