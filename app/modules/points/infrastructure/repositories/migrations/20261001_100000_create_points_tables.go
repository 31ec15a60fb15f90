package pointsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating points seasons, memberships and ledger tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS points_seasons (
					id          VARCHAR(100) PRIMARY KEY,
					name        VARCHAR(100) NOT NULL,
					start_date  TIMESTAMPTZ  NOT NULL,
					end_date    TIMESTAMPTZ,
					is_active   BOOLEAN      NOT NULL DEFAULT false,
					created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS uq_points_seasons_single_active
					ON points_seasons (is_active) WHERE is_active;
			`); err != nil {
				return fmt.Errorf("failed to create points_seasons: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS points_season_memberships (
					id            BIGSERIAL    PRIMARY KEY,
					season_id     VARCHAR(100) NOT NULL REFERENCES points_seasons(id) ON DELETE CASCADE,
					user_id       VARCHAR(64)  NOT NULL,
					points        INTEGER      NOT NULL DEFAULT 0,
					rebuys        INTEGER      NOT NULL DEFAULT 0 CHECK (rebuys >= 0),
					special_data  JSONB,
					created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
					updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
					CONSTRAINT uq_points_membership_user_season UNIQUE (user_id, season_id)
				);
				CREATE INDEX IF NOT EXISTS idx_points_memberships_season_points
					ON points_season_memberships (season_id, points DESC);
			`); err != nil {
				return fmt.Errorf("failed to create points_season_memberships: %w", err)
			}

			// event_id NULL rows (manual adjustments) never collide: NULLs are distinct.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS points_ledger (
					id             BIGSERIAL    PRIMARY KEY,
					membership_id  BIGINT       NOT NULL REFERENCES points_season_memberships(id) ON DELETE CASCADE,
					event_id       BIGINT,
					kind           VARCHAR(16)  NOT NULL CHECK (kind IN ('scoring', 'decay', 'manual')),
					points_delta   INTEGER      NOT NULL,
					reason         VARCHAR(255) NOT NULL,
					created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
					CONSTRAINT unique_points_per_event UNIQUE (membership_id, event_id, kind)
				);
				CREATE INDEX IF NOT EXISTS idx_points_ledger_membership_created
					ON points_ledger (membership_id, created_at DESC);
				CREATE INDEX IF NOT EXISTS idx_points_ledger_event
					ON points_ledger (event_id);
			`); err != nil {
				return fmt.Errorf("failed to create points_ledger: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS points_event_runs (
					event_id         BIGINT       NOT NULL,
					phase            VARCHAR(16)  NOT NULL,
					strategy_key     VARCHAR(64)  NOT NULL,
					processing_hash  CHAR(64)     NOT NULL,
					entries          INTEGER      NOT NULL DEFAULT 0,
					created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
					PRIMARY KEY (event_id, phase)
				);
			`); err != nil {
				return fmt.Errorf("failed to create points_event_runs: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping points tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"points_event_runs", "points_ledger", "points_season_memberships", "points_seasons"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		})
	})
}
