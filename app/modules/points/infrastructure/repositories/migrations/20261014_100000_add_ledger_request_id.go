package pointsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding request_id to points_ledger...")

		_, err := db.ExecContext(ctx, `
			ALTER TABLE points_ledger ADD COLUMN IF NOT EXISTS request_id VARCHAR(64);
			CREATE UNIQUE INDEX IF NOT EXISTS uq_points_ledger_request
				ON points_ledger (membership_id, request_id) WHERE request_id IS NOT NULL;
		`)
		if err != nil {
			return fmt.Errorf("failed to add points_ledger.request_id: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping points_ledger.request_id...")

		_, err := db.ExecContext(ctx, `
			DROP INDEX IF EXISTS uq_points_ledger_request;
			ALTER TABLE points_ledger DROP COLUMN IF EXISTS request_id;
		`)
		if err != nil {
			return fmt.Errorf("failed to drop points_ledger.request_id: %w", err)
		}
		return nil
	})
}
