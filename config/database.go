package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func ConnectDB(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	dsn := cfg.DSN()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	if os.Getenv("VERCEL") != "" {
		poolConfig.MaxConns = 5
		poolConfig.MinConns = 0
		poolConfig.MaxConnLifetime = 5 * time.Minute
		poolConfig.MaxConnIdleTime = 1 * time.Minute
		poolConfig.HealthCheckPeriod = 1 * time.Minute
	} else {
		poolConfig.MaxConns = 25
		poolConfig.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// An unreachable database is not fatal: cart operations fall back to the
	// local store and the pool reconnects lazily. Migrations run once it answers.
	if err := pool.Ping(pingCtx); err != nil {
		slog.Warn("Database ping failed, cart will use local fallback and migrations are deferred until it recovers", "error", err)
		go migrateWhenReachable(ctx, pool.Ping, func() error {
			return runMigrations(dsn, cfg.MigrationsDir)
		}, backoff.NewExponentialBackOff())
		return pool, nil
	}

	slog.Info("Database connected successfully")

	if err := runMigrations(dsn, cfg.MigrationsDir); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// migrateWhenReachable pings until the database answers, then applies the
// migrations. It gives up when ctx ends.
func migrateWhenReachable(ctx context.Context, ping func(context.Context) error, migrate func() error, b backoff.BackOff) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, ping(ctx)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(0))
	if err != nil {
		slog.Error("Database never became reachable, migrations not applied", "error", err)
		return err
	}

	slog.Info("Database reachable again, applying deferred migrations")
	if err := migrate(); err != nil {
		slog.Error("Deferred migrations failed", "error", err)
		return err
	}
	return nil
}

// DSN prefers DATABASE_URL over the individual DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func runMigrations(dsn, dir string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open DB for migrations: %w", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve migration path: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	slog.Info("Database migrations applied (or already up to date)")
	return nil
}
