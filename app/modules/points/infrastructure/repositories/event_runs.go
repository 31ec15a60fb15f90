package pointsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// GetEventRun returns the run record for (eventID, phase) or ErrNotFound.
func (r *Impl) GetEventRun(ctx context.Context, db bun.IDB, eventID int64, phase string) (*EventRun, error) {
	db = r.resolveDB(db)

	run := new(EventRun)
	err := db.NewSelect().
		Model(run).
		Where("event_id = ?", eventID).
		Where("phase = ?", phase).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pointsdb.GetEventRun: %w", err)
	}
	return run, nil
}

// InsertEventRun records a completed phase. A concurrent duplicate is
// reported as ErrDuplicateLedgerEntry so the caller's transaction rolls back.
func (r *Impl) InsertEventRun(ctx context.Context, db bun.IDB, run *EventRun) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(run).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pointsdb.InsertEventRun: %w", ErrDuplicateLedgerEntry)
		}
		return fmt.Errorf("pointsdb.InsertEventRun: %w", err)
	}
	return nil
}
