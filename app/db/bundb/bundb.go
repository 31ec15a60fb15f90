package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	pointsmigrations "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Open connects to Postgres, verifies the connection and returns a bun.DB
// with the points models registered.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*bun.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("bundb.Open: empty dsn")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := NewDB(sqldb)
	logger.InfoContext(ctx, "Database connection established")
	return db, nil
}

// NewDB wraps an open sql.DB in bun with the Postgres dialect.
func NewDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*pointsdb.Season)(nil),
		(*pointsdb.SeasonMembership)(nil),
		(*pointsdb.LedgerEntry)(nil),
		(*pointsdb.EventRun)(nil),
	)
	return db
}

// Migrate initializes the migration tables and applies pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator := migrate.NewMigrator(db, pointsmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "No new migrations to run")
	} else {
		logger.InfoContext(ctx, "Migrations applied", slog.String("group", group.String()))
	}
	return nil
}
