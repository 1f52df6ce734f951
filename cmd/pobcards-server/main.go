package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/pobcards/internal/bootstrap"
	"github.com/at-ishikawa/pobcards/internal/config"
	"github.com/at-ishikawa/pobcards/internal/database"
	"github.com/at-ishikawa/pobcards/internal/database/migrations"
	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/gateway/dbgateway"
	"github.com/at-ishikawa/pobcards/internal/gateway/firebase"
	"github.com/at-ishikawa/pobcards/internal/gateway/s3share"
	"github.com/at-ishikawa/pobcards/internal/server"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "pobcards-server",
		Short:         "pobcards gateway HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app := bootstrap.New(
		bootstrap.WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second),
		bootstrap.WithLogger(logger),
	)

	backend, err := newBackend(ctx, app, cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newHandler(backend, cfg.Server, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		logger.Info("starting server", "addr", srv.Addr, "backend", cfg.Gateway.Backend, "shares", cfg.Shares.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

// newBackend connects the gateway the server exposes. Connections are closed by app's shutdown hooks.
func newBackend(ctx context.Context, app *bootstrap.App, cfg *config.Config) (gateway.Gateway, error) {
	var backend gateway.Gateway
	switch cfg.Gateway.Backend {
	case config.GatewayFirebase:
		client := firebase.New(
			cfg.Gateway.Firebase.URL,
			cfg.Gateway.Firebase.Token,
			time.Duration(cfg.Gateway.Firebase.TimeoutSeconds)*time.Second,
		)
		app.AddShutdownHook(func(context.Context) error { return client.Close() })
		backend = client
	default:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.AddShutdownHook(func(context.Context) error { return db.Close() })
		backend = dbgateway.New(db)
	}

	if cfg.Shares.Backend == config.SharesS3 {
		shares, err := s3share.NewFromConfig(ctx, cfg.Shares.S3)
		if err != nil {
			return nil, fmt.Errorf("s3share.NewFromConfig() > %w", err)
		}
		backend = gateway.Composite{
			ContentStore: backend,
			ScoreStore:   backend,
			ShareStore:   shares,
		}
	}
	return backend, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if err := database.WaitReady(ctx, db, database.DefaultPingAttempts, time.Second); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database.WaitReady() > %w", err)
	}
	if cfg.Server.MigrateOnStart {
		if err := migrations.Up(db.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations.Up() > %w", err)
		}
	}
	return db, nil
}

func newHandler(backend gateway.Gateway, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	service := server.NewGatewayService(backend, logger)
	path, h := service.Handler(connect.WithInterceptors(server.NewLoggingInterceptor(logger)))

	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return server.WithCORS(h2c.NewHandler(mux, &http2.Server{}), cfg.CORS.AllowedOrigins)
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
