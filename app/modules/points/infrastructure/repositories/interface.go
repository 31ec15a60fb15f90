package pointsdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository is the persistence collaborator of the points service.
// Every method accepts a bun.IDB so callers can pass a transaction; nil uses
// the repository's own connection.
type Repository interface {
	// Memberships
	LockMemberships(ctx context.Context, db bun.IDB, seasonID string, ids []int64) ([]SeasonMembership, error)
	LockPositiveMemberships(ctx context.Context, db bun.IDB, seasonID string) ([]SeasonMembership, error)
	AddPoints(ctx context.Context, db bun.IDB, membershipID int64, delta int) error
	GetMembership(ctx context.Context, db bun.IDB, membershipID int64) (*SeasonMembership, error)
	GetOrCreateMembership(ctx context.Context, db bun.IDB, seasonID, userID string) (*SeasonMembership, error)
	FindMembershipsByUsers(ctx context.Context, db bun.IDB, seasonID string, userIDs []string) ([]SeasonMembership, error)
	ListStandings(ctx context.Context, db bun.IDB, filter StandingsFilter, limit, offset int) ([]Standing, error)
	CountMemberships(ctx context.Context, db bun.IDB, filter StandingsFilter) (int, error)

	// Ledger
	InsertLedgerEntries(ctx context.Context, db bun.IDB, entries []*LedgerEntry) error
	ListLedgerEntries(ctx context.Context, db bun.IDB, membershipID int64, limit int) ([]LedgerEntry, error)
	SumLedger(ctx context.Context, db bun.IDB, membershipID int64) (int, error)
	FindLedgerEntryByRequest(ctx context.Context, db bun.IDB, membershipID int64, requestID string) (*LedgerEntry, error)

	// Event runs
	GetEventRun(ctx context.Context, db bun.IDB, eventID int64, phase string) (*EventRun, error)
	InsertEventRun(ctx context.Context, db bun.IDB, run *EventRun) error

	// Seasons
	CreateSeason(ctx context.Context, db bun.IDB, season *Season) error
	GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*Season, error)
	GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error)
	ActivateSeason(ctx context.Context, db bun.IDB, seasonID string, now time.Time) error
	ListArchivedSeasons(ctx context.Context, db bun.IDB, limit, offset int) ([]Season, error)
	CountArchivedSeasons(ctx context.Context, db bun.IDB) (int, error)
}
