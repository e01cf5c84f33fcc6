// Package main provides the CLI entrypoint for the lead intake service.
// It wires subcommands (serve, migrate, jwt, stats), loads configuration,
// and initializes logging and error reporting.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"leadintake/internal/config"
	"leadintake/pkg/logger"
	"leadintake/pkg/reporter"
	"leadintake/pkg/storage/postgres"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reporterFlushTimeout = 2 * time.Second

// getPostgres creates a PostgreSQL client for one of the configured
// connections and returns it along with a cleanup function to close the
// connection pool.
func getPostgres(ctx context.Context,
	name string,
	conn config.DatabaseConnection,
	sessionRole string) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           conn.Username,
		Password:           conn.Password,
		Host:               conn.Host,
		Port:               conn.Port,
		Database:           conn.DatabaseName,
		SessionRole:        sessionRole,
		ConnMaxLifetime:    conn.ConnMaxLifetime,
		ConnMaxIdleTime:    conn.ConnMaxIdleTime,
		MaxOpenConnections: conn.MaxOpenConnections,
		MaxIdleConnections: conn.MaxIdleConnections,
		SslMode:            conn.SslMode,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.String("connection", name), zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...", zap.String("connection", name))
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.String("connection", name), zap.Error(err))
		}
	}
}

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use: "leadintake",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config File Path")

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	configPath := fs.String("c", "", "The config file path, environment only when empty")
	fs.SetOutput(io.Discard)
	_ = fs.Parse(os.Args[1:])

	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	if err := reporter.Init(reporter.Options{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}); err != nil {
		logger.Warn(ctx, "error reporting disabled", zap.Error(err))
	}
	defer reporter.Flush(reporterFlushTimeout)

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			reporter.Recovered(ctx, p)
			reporter.Flush(reporterFlushTimeout)
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		migrateCommand(cfg),
		serveCommand(cfg),
		JWTCommand(cfg),
		statsCommand(cfg),
	)

	err = rootCmd.Execute()
	logger.Sync()
	if err != nil {
		reporter.Flush(reporterFlushTimeout)
		os.Exit(1) //nolint: gocritic
	}
}
