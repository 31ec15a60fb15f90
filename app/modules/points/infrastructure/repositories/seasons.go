package pointsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// CreateSeason inserts a new season. An existing id is a unique violation.
func (r *Impl) CreateSeason(ctx context.Context, db bun.IDB, season *Season) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(season).Exec(ctx); err != nil {
		return fmt.Errorf("pointsdb.CreateSeason: %w", err)
	}
	return nil
}

// GetSeason returns a season by id.
func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*Season, error) {
	db = r.resolveDB(db)

	season := new(Season)
	if err := db.NewSelect().Model(season).Where("id = ?", seasonID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pointsdb.GetSeason: %w", err)
	}
	return season, nil
}

// GetActiveSeason returns the single active season.
func (r *Impl) GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error) {
	db = r.resolveDB(db)

	season := new(Season)
	if err := db.NewSelect().Model(season).Where("is_active = true").Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pointsdb.GetActiveSeason: %w", err)
	}
	return season, nil
}

// ActivateSeason makes seasonID the only active season. Deactivated seasons
// without an end date are closed at now.
func (r *Impl) ActivateSeason(ctx context.Context, db bun.IDB, seasonID string, now time.Time) error {
	db = r.resolveDB(db)

	_, err := db.NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = false").
		Set("end_date = COALESCE(end_date, ?)", now).
		Where("is_active = true").
		Where("id <> ?", seasonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pointsdb.ActivateSeason: deactivate: %w", err)
	}

	res, err := db.NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = true").
		Where("id = ?", seasonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pointsdb.ActivateSeason: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListArchivedSeasons pages through inactive seasons, most recent start first.
func (r *Impl) ListArchivedSeasons(ctx context.Context, db bun.IDB, limit, offset int) ([]Season, error) {
	db = r.resolveDB(db)

	var seasons []Season
	err := db.NewSelect().
		Model(&seasons).
		Where("is_active = false").
		OrderExpr("start_date DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.ListArchivedSeasons: %w", err)
	}
	return seasons, nil
}

// CountArchivedSeasons counts inactive seasons.
func (r *Impl) CountArchivedSeasons(ctx context.Context, db bun.IDB) (int, error) {
	db = r.resolveDB(db)

	n, err := db.NewSelect().Model((*Season)(nil)).Where("is_active = false").Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("pointsdb.CountArchivedSeasons: %w", err)
	}
	return n, nil
}
