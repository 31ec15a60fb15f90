package pointsservice

import (
	"context"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
)

// Service defines the contract for points operations.
type Service interface {
	// ApplyDeltas applies one batch of deltas atomically under row locks.
	ApplyDeltas(ctx context.Context, req ApplyRequest) (*ApplyResult, error)

	// CompleteEvent runs scoring then decay for a finished event.
	CompleteEvent(ctx context.Context, event pointsdomain.EventSnapshot) (*CompletionResult, error)

	// ImportEventResults builds an event from a results sheet and completes it.
	ImportEventResults(ctx context.Context, req ImportResultsRequest) (*CompletionResult, error)

	AdjustPoints(ctx context.Context, req AdjustmentRequest) (*ApplyResult, error)
	Reconcile(ctx context.Context, membershipID int64) (*Reconciliation, error)

	CreateSeason(ctx context.Context, req CreateSeasonRequest) (*SeasonView, error)
	ActivateSeason(ctx context.Context, seasonID string) (*SeasonView, error)
	GetActiveSeason(ctx context.Context) (*SeasonView, error)
	ListArchivedSeasons(ctx context.Context, page int) (*SeasonArchivePage, error)
	EnsureMembership(ctx context.Context, seasonID, userID string) (*MembershipView, error)

	GetLeaderboard(ctx context.Context, query LeaderboardQuery) (*LeaderboardPage, error)
	GetLedgerHistory(ctx context.Context, membershipID int64, limit int) ([]LedgerEntryView, error)

	ExportLeaderboardXLSX(ctx context.Context, seasonID string) ([]byte, error)
	RenderPointsHistoryChart(ctx context.Context, membershipID int64) ([]byte, error)
}

var _ Service = (*PointsService)(nil)
