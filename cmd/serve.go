package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"leadintake/internal/api"
	"leadintake/internal/api/handler/v1handler"
	"leadintake/internal/config"
	"leadintake/internal/leads"
	"leadintake/internal/notify"
	"leadintake/internal/ratelimit"
	"leadintake/internal/submission"
	"leadintake/internal/worker"
	"leadintake/pkg/logger"
	"leadintake/pkg/notifier"
	"leadintake/pkg/notifier/functions"
	"leadintake/pkg/notifier/mailer"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// newDispatcher builds the notification dispatcher selected by the config.
func newDispatcher(cfg *config.Config) (notifier.Dispatcher, error) {
	switch cfg.Notification.Driver {
	case "smtp":
		smtp := cfg.Notification.SMTP

		return mailer.New(mailer.Options{
			Host:     smtp.Host,
			Port:     smtp.Port,
			Username: smtp.Username,
			Password: smtp.Password,
			From:     smtp.From,
		}), nil
	case "function":
		fn := cfg.Notification.Function
		if fn.BaseURL == "" {
			return nil, errors.New("notification function base URL is not configured")
		}

		return functions.New(&http.Client{Timeout: fn.Timeout}, fn.BaseURL, fn.ServiceKey), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Notification.Driver)
	}
}

// getRedis connects to Redis when an address is configured. A nil client
// disables rate limiting.
func getRedis(ctx context.Context, cfg *config.Config) (*redis.Client, func()) {
	if cfg.Redis.Addr == "" {
		logger.Warn(ctx, "redis is not configured, lead submissions are not rate limited")

		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// the limiter fails open, so an unreachable redis is not fatal
		logger.Warn(ctx, "could not ping redis", zap.Error(err))
	}

	return client, func() {
		logger.Info(ctx, "closing redis client...")
		if err := client.Close(); err != nil {
			logger.Warn(ctx, "could not close redis client", zap.Error(err))
		}
	}
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and notification workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// instruments created below export through this provider
			telemetry, err := api.NewTelemetry()
			if err != nil {
				logger.Fatal(ctx, "could not set up metrics", zap.Error(err))
			}
			otel.SetMeterProvider(telemetry.MeterProvider)

			elevated, closeElevated := getPostgres(ctx, "elevated", cfg.Database.Elevated, cfg.Database.SessionRole)
			defer closeElevated()
			session, closeSession := getPostgres(ctx, "session", cfg.Database.Session, cfg.Database.SessionRole)
			defer closeSession()

			redisClient, closeRedis := getRedis(ctx, cfg)
			defer closeRedis()

			dispatcher, err := newDispatcher(cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create notification dispatcher", zap.Error(err))
			}

			riverClient, err := worker.Start(ctx, elevated.Pool, dispatcher, worker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not start notification workers", zap.Error(err))
			}

			repo := leads.New(elevated, session)
			handler := submission.New(repo.Writer(),
				notify.NewQueue(elevated, notify.NewOptions(cfg)),
				submission.NewOptions(cfg))

			deps := api.Deps{
				Deps: v1handler.Deps{
					Leads:     repo,
					Submitter: handler,
				},
				Health: map[string]api.HealthCheck{
					"database":         elevated.Ping,
					"database_session": session.Ping,
				},
				Telemetry: telemetry,
			}
			if redisClient != nil {
				deps.Limiter = ratelimit.NewRedisLimiter(redisClient, ratelimit.Options{
					Requests: cfg.RateLimit.Requests,
					Window:   cfg.RateLimit.Window,
				})
				deps.Health["redis"] = func(ctx context.Context) error {
					return redisClient.Ping(ctx).Err()
				}
			}

			stopWebserver := setupServer(ctx, cfg, deps)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping notification workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop notification workers", zap.Error(err))
			}
			if err := telemetry.MeterProvider.Shutdown(shutdownCtx); err != nil {
				logger.Warn(shutdownCtx, "could not shut down meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
