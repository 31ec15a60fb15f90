package pointsdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Season is a named period over which points accumulate.
type Season struct {
	bun.BaseModel `bun:"table:points_seasons,alias:sn"`

	ID        string    `bun:"id,pk"` // slug, e.g. "spring-2027"
	Name      string    `bun:"name,notnull"`
	StartDate time.Time `bun:"start_date,notnull"`
	EndDate   time.Time `bun:"end_date,nullzero"`
	IsActive  bool      `bun:"is_active,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// SeasonMembership holds a user's running balance for one season.
type SeasonMembership struct {
	bun.BaseModel `bun:"table:points_season_memberships,alias:sm"`

	ID          int64          `bun:"id,pk,autoincrement"`
	SeasonID    string         `bun:"season_id,notnull"`
	UserID      string         `bun:"user_id,notnull"`
	Points      int            `bun:"points,notnull,default:0"`
	Rebuys      int            `bun:"rebuys,notnull,default:0"`
	SpecialData map[string]any `bun:"special_data,type:jsonb,nullzero"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// LedgerEntry is an immutable record of one balance change.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:points_ledger,alias:pl"`

	ID           int64     `bun:"id,pk,autoincrement"`
	MembershipID int64     `bun:"membership_id,notnull"`
	EventID      *int64    `bun:"event_id"`
	Kind         string    `bun:"kind,notnull"`
	PointsDelta  int       `bun:"points_delta,notnull"`
	Reason       string    `bun:"reason,type:varchar(255),notnull"`
	RequestID    *string   `bun:"request_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// EventRun records that one phase of an event's completion has been applied.
type EventRun struct {
	bun.BaseModel `bun:"table:points_event_runs,alias:er"`

	EventID        int64     `bun:"event_id,pk"`
	Phase          string    `bun:"phase,pk"`
	StrategyKey    string    `bun:"strategy_key,notnull"`
	ProcessingHash string    `bun:"processing_hash,notnull"`
	Entries        int       `bun:"entries,notnull,default:0"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Standing is a leaderboard row.
type Standing struct {
	MembershipID int64  `bun:"id"`
	UserID       string `bun:"user_id"`
	Points       int    `bun:"points"`
	Rebuys       int    `bun:"rebuys"`
}
