// This is the main entry point of the yelpcamp application.
// It loads configuration, connects the stores, builds the router and runs the
// HTTP server with graceful shutdown. The same binary also applies migrations
// and seeds sample data; see the commands below.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/yelpcamp-go/auth"
	"github.com/user/yelpcamp-go/background"
	"github.com/user/yelpcamp-go/config"
	"github.com/user/yelpcamp-go/db"
	"github.com/user/yelpcamp-go/docstore"
	"github.com/user/yelpcamp-go/seed"
	"github.com/user/yelpcamp-go/server"
)

func main() {
	// A .env file is a development convenience; production sets variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error loading .env file", "error", err)
	}

	app := &cli.App{
		Name:  "yelpcamp",
		Usage: "campground reviews, farm stands and friends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "optional YAML file with settings; environment variables win",
				EnvVars: []string{"YELPCAMP_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations and exit",
				Action: migrateCmd,
			},
			{
				Name:  "seed",
				Usage: "replace all campgrounds with random sample data",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Value: seed.DefaultCount, Usage: "number of campgrounds"},
					&cli.StringFlag{Name: "username", Value: "seed", Usage: "author of the sample campgrounds"},
					&cli.StringFlag{Name: "password", Value: "seed", Usage: "password used if the author has to be created"},
				},
				Action: seedCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("yelpcamp failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Server.IsDevelopment() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// openStores returns the stores for the configured backend. The returned
// pool is nil for the memory backend.
func openStores(cfg *config.AppConfig, logger *slog.Logger) (*server.Stores, *pgxpool.Pool, error) {
	if cfg.Store.Backend == config.BackendMemory {
		logger.Warn("using in-memory stores; data is lost on exit")
		return server.NewMemoryStores(cfg.Store.OpTimeout), nil, nil
	}

	if err := db.RunMigrations(db.DSN(cfg.DB), cfg.Store.MigrationsPath); err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return server.NewPostgresStores(pool, cfg.Store.OpTimeout), pool, nil
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	stores, pool, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	opts := server.Options{Config: cfg, Logger: logger, AccessLog: true}
	if pool != nil {
		defer pool.Close()
		opts.Ping = pool.Ping
	}

	app, err := server.New(stores, opts)
	if err != nil {
		return err
	}

	// The sweeper keeps the session table from growing without bound.
	sweeperStop := make(chan struct{})
	sweeperDone := background.StartSessionSweeper(app.Sessions, cfg.Store.SweepInterval, cfg.Store.OpTimeout, sweeperStop, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "env", cfg.Server.Env, "store", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		close(sweeperStop)
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(sweeperStop)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	select {
	case <-sweeperDone:
	case <-ctx.Done():
		logger.Warn("session sweeper did not stop in time")
	}
	logger.Info("server stopped gracefully")
	return nil
}

func migrateCmd(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	newLogger(cfg)
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate needs STORE_BACKEND=%s", config.BackendPostgres)
	}
	return db.RunMigrations(db.DSN(cfg.DB), cfg.Store.MigrationsPath)
}

func seedCmd(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("seeding the memory store has no lasting effect; set STORE_BACKEND=%s", config.BackendPostgres)
	}

	stores, pool, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := c.Context
	author, err := stores.Users.GetByUsername(ctx, c.String("username"))
	if errors.Is(err, auth.ErrUserNotFound) {
		authService, serr := auth.NewAuthService(stores.Users, cfg.Auth.BcryptCost, logger)
		if serr != nil {
			return serr
		}
		author, err = authService.Register(ctx, c.String("username"), "", c.String("password"))
	}
	if err != nil {
		return fmt.Errorf("resolving seed author: %w", err)
	}

	// Reviews of the old campgrounds would be orphaned, so they go too.
	if _, err := stores.Reviews.DeleteMany(ctx, docstore.All()); err != nil {
		return fmt.Errorf("clearing reviews: %w", err)
	}
	r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	return seed.Campgrounds(ctx, stores.Campgrounds, author.ID, c.Int("count"), r, logger)
}
