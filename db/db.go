// Package db provides database connectivity and migration functionality for the yelpcamp application.
// It handles establishing the connection pool and running schema migrations.
// This package centralizes database concerns so the rest of the application only ever
// sees a ready-to-use *pgxpool.Pool.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	// `golang-migrate` applies versioned SQL files from the migrations directory.
	"github.com/golang-migrate/migrate/v4"
	// The postgres database driver registers the "postgres://" scheme with golang-migrate.
	// It talks to the server through `lib/pq` via database/sql.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// The file source driver reads migrations from the local filesystem.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/yelpcamp-go/apperror"
	"github.com/user/yelpcamp-go/config"
)

// NewPool establishes the PostgreSQL connection pool used by the document store,
// the user repository and the session store.
//
// It configures max connections, connection lifetime and idle connection
// management, and verifies connectivity with a ping before returning.
func NewPool(cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	// Use a context with a timeout for pool creation so an unreachable
	// database does not block startup forever.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close() // Clean up on connection failure
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}

	return pool, nil
}

// DSN constructs a connection string from PoolConfig. Both pgx and
// golang-migrate's postgres driver accept this URL form.
func DSN(cfg *config.PoolConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}

// RunMigrations applies any pending database migrations from migrationsPath.
//
// The directory holds golang-migrate pairs such as
// 000001_create_users.up.sql / 000001_create_users.down.sql.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return apperror.NewDatabaseError("failed to create migrator", err)
	}
	// m.Close() returns two errors, one for source and one for database.
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			slog.Warn("error closing migration source", "error", srcErr)
		}
		if dbErr != nil {
			slog.Warn("error closing migration database instance", "error", dbErr)
		}
	}()

	// `migrate.ErrNoChange` only means the schema is already current.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewDatabaseError("failed to run migrations", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		slog.Info("database schema ready", "version", version, "dirty", dirty)
	}
	return nil
}
