package pointsservice

import (
	"time"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
)

const (
	DefaultLeaderboardPageSize = 50
	DefaultArchivePageSize     = 20
	defaultHistoryLimit        = 100
)

// ApplyRequest is one transactional batch of balance changes.
type ApplyRequest struct {
	SeasonID string
	EventID  *int64
	Kind     pointsdomain.LedgerKind
	Deltas   pointsdomain.Deltas
	Reason   string
	// RequestID, when set, is stored on every entry of the batch.
	RequestID string
}

// AppliedDelta is a delta that reached a membership.
type AppliedDelta struct {
	MembershipID int64 `json:"membership_id"`
	Delta        int   `json:"delta"`
	Balance      int   `json:"balance"`
}

// ApplyResult reports the outcome of a batch.
type ApplyResult struct {
	Applied        []AppliedDelta `json:"applied"`
	Skipped        []int64        `json:"skipped,omitempty"`
	AlreadyApplied bool           `json:"already_applied,omitempty"`
}

// PhaseOutcome describes one phase of a completion.
type PhaseOutcome struct {
	Phase          pointsdomain.Phase `json:"phase"`
	StrategyKey    string             `json:"strategy_key"`
	Reason         string             `json:"reason"`
	AlreadyApplied bool               `json:"already_applied"`
	Result         *ApplyResult       `json:"result,omitempty"`
}

// CompletionResult is what CompleteEvent did for an event.
type CompletionResult struct {
	EventID    int64         `json:"event_id"`
	SeasonID   string        `json:"season_id"`
	Skipped    bool          `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Scoring    *PhaseOutcome `json:"scoring,omitempty"`
	Decay      *PhaseOutcome `json:"decay,omitempty"`
}

// AdjustmentRequest is a manual balance correction.
type AdjustmentRequest struct {
	MembershipID int64
	Delta        int
	Reason       string
	// RequestID makes the adjustment idempotent. A repeat is reported as
	// already applied instead of posting the delta again.
	RequestID string
}

// SeasonView is a season as exposed to callers.
type SeasonView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// CreateSeasonRequest describes a new season.
type CreateSeasonRequest struct {
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	Activate  bool
}

// MembershipView is a membership as exposed to callers.
type MembershipView struct {
	ID       int64  `json:"id"`
	SeasonID string `json:"season_id"`
	UserID   string `json:"user_id"`
	Points   int    `json:"points"`
	Rebuys   int    `json:"rebuys"`
}

// LeaderboardRow is one ranked membership.
type LeaderboardRow struct {
	Rank         int    `json:"rank"`
	MembershipID int64  `json:"membership_id"`
	UserID       string `json:"user_id"`
	Points       int    `json:"points"`
	Rebuys       int    `json:"rebuys"`
}

// Page carries pagination metadata.
type Page struct {
	Number     int `json:"number"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// LeaderboardQuery selects a leaderboard page. An empty SeasonID means the active season.
type LeaderboardQuery struct {
	SeasonID string
	Search   string
	Page     int
}

// LeaderboardPage is a page of a season's standings.
type LeaderboardPage struct {
	Season SeasonView       `json:"season"`
	Rows   []LeaderboardRow `json:"rows"`
	Page   Page             `json:"page"`
}

// SeasonArchivePage is a page of inactive seasons.
type SeasonArchivePage struct {
	Seasons []SeasonView `json:"seasons"`
	Page    Page         `json:"page"`
}

// LedgerEntryView is a ledger row as exposed to callers.
type LedgerEntryView struct {
	ID          int64     `json:"id"`
	EventID     *int64    `json:"event_id,omitempty"`
	Kind        string    `json:"kind"`
	PointsDelta int       `json:"points_delta"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reconciliation compares a balance with its ledger.
type Reconciliation struct {
	MembershipID int64 `json:"membership_id"`
	Balance      int   `json:"balance"`
	LedgerTotal  int   `json:"ledger_total"`
	Consistent   bool  `json:"consistent"`
}

// ImportResultsRequest scores an event from an uploaded results sheet.
type ImportResultsRequest struct {
	EventID         int64
	SeasonID        string
	ScoringStrategy string
	Sheet           []byte
}
