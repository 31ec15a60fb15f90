package pointsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

// LockMemberships returns the memberships of seasonID whose ids are in ids,
// holding FOR UPDATE row locks until the surrounding transaction ends.
// Rows are locked in id order so overlapping batches cannot deadlock.
// Ids with no matching row are simply absent from the result.
func (r *Impl) LockMemberships(ctx context.Context, db bun.IDB, seasonID string, ids []int64) ([]SeasonMembership, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)

	var memberships []SeasonMembership
	if err := lockMembershipsQuery(db, &memberships, seasonID, ids).Scan(ctx); err != nil {
		return nil, fmt.Errorf("pointsdb.LockMemberships: %w", err)
	}
	return memberships, nil
}

func lockMembershipsQuery(db bun.IDB, dest *[]SeasonMembership, seasonID string, ids []int64) *bun.SelectQuery {
	return db.NewSelect().
		Model(dest).
		Where("season_id = ?", seasonID).
		Where("id IN (?)", bun.In(ids)).
		OrderExpr("id ASC").
		For("UPDATE")
}

// LockPositiveMemberships locks every membership of seasonID with a positive balance.
func (r *Impl) LockPositiveMemberships(ctx context.Context, db bun.IDB, seasonID string) ([]SeasonMembership, error) {
	db = r.resolveDB(db)

	var memberships []SeasonMembership
	err := db.NewSelect().
		Model(&memberships).
		Where("season_id = ?", seasonID).
		Where("points > 0").
		OrderExpr("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.LockPositiveMemberships: %w", err)
	}
	return memberships, nil
}

// AddPoints adds delta to a membership's balance, touching only the points column.
func (r *Impl) AddPoints(ctx context.Context, db bun.IDB, membershipID int64, delta int) error {
	db = r.resolveDB(db)

	res, err := db.NewUpdate().
		Model((*SeasonMembership)(nil)).
		Set("points = points + ?", delta).
		Set("updated_at = current_timestamp").
		Where("id = ?", membershipID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("pointsdb.AddPoints: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("pointsdb.AddPoints: membership %d: %w", membershipID, ErrNoRowsAffected)
	}
	return nil
}

// GetMembership returns a membership by id.
func (r *Impl) GetMembership(ctx context.Context, db bun.IDB, membershipID int64) (*SeasonMembership, error) {
	db = r.resolveDB(db)

	m := new(SeasonMembership)
	err := db.NewSelect().Model(m).Where("id = ?", membershipID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pointsdb.GetMembership: %w", err)
	}
	return m, nil
}

// GetOrCreateMembership returns the (user, season) membership, creating it at zero points.
func (r *Impl) GetOrCreateMembership(ctx context.Context, db bun.IDB, seasonID, userID string) (*SeasonMembership, error) {
	db = r.resolveDB(db)

	_, err := db.NewInsert().
		Model(&SeasonMembership{SeasonID: seasonID, UserID: userID}).
		On("CONFLICT (user_id, season_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.GetOrCreateMembership: %w", err)
	}

	m := new(SeasonMembership)
	err = db.NewSelect().
		Model(m).
		Where("season_id = ?", seasonID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.GetOrCreateMembership: %w", err)
	}
	return m, nil
}

// FindMembershipsByUsers returns the season memberships belonging to userIDs.
func (r *Impl) FindMembershipsByUsers(ctx context.Context, db bun.IDB, seasonID string, userIDs []string) ([]SeasonMembership, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)

	var memberships []SeasonMembership
	err := db.NewSelect().
		Model(&memberships).
		Where("season_id = ?", seasonID).
		Where("user_id IN (?)", bun.In(userIDs)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.FindMembershipsByUsers: %w", err)
	}
	return memberships, nil
}

// StandingsFilter narrows a leaderboard query.
type StandingsFilter struct {
	SeasonID string
	Search   string // case-insensitive substring of user_id
}

func (f StandingsFilter) apply(q *bun.SelectQuery) *bun.SelectQuery {
	q = q.Where("season_id = ?", f.SeasonID)
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(`user_id ILIKE ? ESCAPE '\'`, containsPattern(search))
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern matches search literally anywhere in the column.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// ListStandings returns a page of the season leaderboard, highest balance first.
func (r *Impl) ListStandings(ctx context.Context, db bun.IDB, filter StandingsFilter, limit, offset int) ([]Standing, error) {
	db = r.resolveDB(db)

	var standings []Standing
	err := filter.apply(db.NewSelect().
		Model((*SeasonMembership)(nil)).
		Column("id", "user_id", "points", "rebuys")).
		OrderExpr("points DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &standings)
	if err != nil {
		return nil, fmt.Errorf("pointsdb.ListStandings: %w", err)
	}
	return standings, nil
}

// CountMemberships counts the memberships matching filter.
func (r *Impl) CountMemberships(ctx context.Context, db bun.IDB, filter StandingsFilter) (int, error) {
	db = r.resolveDB(db)

	n, err := filter.apply(db.NewSelect().Model((*SeasonMembership)(nil))).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("pointsdb.CountMemberships: %w", err)
	}
	return n, nil
}
