package pointsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// InsertLedgerEntries appends entries in one statement.
// A unique violation is reported as ErrDuplicateLedgerEntry.
func (r *Impl) InsertLedgerEntries(ctx context.Context, db bun.IDB, entries []*LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pointsdb.InsertLedgerEntries: %w", ErrDuplicateLedgerEntry)
		}
		return fmt.Errorf("pointsdb.InsertLedgerEntries: %w", err)
	}
	return nil
}

// ListLedgerEntries returns a membership's entries, newest first.
func (r *Impl) ListLedgerEntries(ctx context.Context, db bun.IDB, membershipID int64, limit int) ([]LedgerEntry, error) {
	db = r.resolveDB(db)

	var entries []LedgerEntry
	q := db.NewSelect().
		Model(&entries).
		Where("membership_id = ?", membershipID).
		OrderExpr("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("pointsdb.ListLedgerEntries: %w", err)
	}
	return entries, nil
}

// SumLedger totals a membership's ledger deltas.
func (r *Impl) SumLedger(ctx context.Context, db bun.IDB, membershipID int64) (int, error) {
	db = r.resolveDB(db)

	var total int
	err := db.NewSelect().
		Model((*LedgerEntry)(nil)).
		ColumnExpr("COALESCE(SUM(points_delta), 0)").
		Where("membership_id = ?", membershipID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("pointsdb.SumLedger: %w", err)
	}
	return total, nil
}

// FindLedgerEntryByRequest returns the entry a request id already posted to a
// membership, or ErrNotFound.
func (r *Impl) FindLedgerEntryByRequest(ctx context.Context, db bun.IDB, membershipID int64, requestID string) (*LedgerEntry, error) {
	db = r.resolveDB(db)

	entry := new(LedgerEntry)
	err := db.NewSelect().
		Model(entry).
		Where("membership_id = ?", membershipID).
		Where("request_id = ?", requestID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pointsdb.FindLedgerEntryByRequest: %w", err)
	}
	return entry, nil
}
