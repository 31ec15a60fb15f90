package pointshandlers

import (
	"context"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
)

// ------------------------
// Fake Points Service
// ------------------------

type FakeService struct {
	trace []string

	ApplyDeltasFunc              func(ctx context.Context, req pointsservice.ApplyRequest) (*pointsservice.ApplyResult, error)
	CompleteEventFunc            func(ctx context.Context, event pointsdomain.EventSnapshot) (*pointsservice.CompletionResult, error)
	ImportEventResultsFunc       func(ctx context.Context, req pointsservice.ImportResultsRequest) (*pointsservice.CompletionResult, error)
	AdjustPointsFunc             func(ctx context.Context, req pointsservice.AdjustmentRequest) (*pointsservice.ApplyResult, error)
	ReconcileFunc                func(ctx context.Context, membershipID int64) (*pointsservice.Reconciliation, error)
	CreateSeasonFunc             func(ctx context.Context, req pointsservice.CreateSeasonRequest) (*pointsservice.SeasonView, error)
	ActivateSeasonFunc           func(ctx context.Context, seasonID string) (*pointsservice.SeasonView, error)
	GetActiveSeasonFunc          func(ctx context.Context) (*pointsservice.SeasonView, error)
	ListArchivedSeasonsFunc      func(ctx context.Context, page int) (*pointsservice.SeasonArchivePage, error)
	EnsureMembershipFunc         func(ctx context.Context, seasonID, userID string) (*pointsservice.MembershipView, error)
	GetLeaderboardFunc           func(ctx context.Context, query pointsservice.LeaderboardQuery) (*pointsservice.LeaderboardPage, error)
	GetLedgerHistoryFunc         func(ctx context.Context, membershipID int64, limit int) ([]pointsservice.LedgerEntryView, error)
	ExportLeaderboardXLSXFunc    func(ctx context.Context, seasonID string) ([]byte, error)
	RenderPointsHistoryChartFunc func(ctx context.Context, membershipID int64) ([]byte, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) ApplyDeltas(ctx context.Context, req pointsservice.ApplyRequest) (*pointsservice.ApplyResult, error) {
	f.record("ApplyDeltas")
	if f.ApplyDeltasFunc != nil {
		return f.ApplyDeltasFunc(ctx, req)
	}
	return &pointsservice.ApplyResult{}, nil
}

func (f *FakeService) CompleteEvent(ctx context.Context, event pointsdomain.EventSnapshot) (*pointsservice.CompletionResult, error) {
	f.record("CompleteEvent")
	if f.CompleteEventFunc != nil {
		return f.CompleteEventFunc(ctx, event)
	}
	return &pointsservice.CompletionResult{EventID: event.ID, SeasonID: event.SeasonID}, nil
}

func (f *FakeService) ImportEventResults(ctx context.Context, req pointsservice.ImportResultsRequest) (*pointsservice.CompletionResult, error) {
	f.record("ImportEventResults")
	if f.ImportEventResultsFunc != nil {
		return f.ImportEventResultsFunc(ctx, req)
	}
	return &pointsservice.CompletionResult{EventID: req.EventID}, nil
}

func (f *FakeService) AdjustPoints(ctx context.Context, req pointsservice.AdjustmentRequest) (*pointsservice.ApplyResult, error) {
	f.record("AdjustPoints")
	if f.AdjustPointsFunc != nil {
		return f.AdjustPointsFunc(ctx, req)
	}
	return &pointsservice.ApplyResult{}, nil
}

func (f *FakeService) Reconcile(ctx context.Context, membershipID int64) (*pointsservice.Reconciliation, error) {
	f.record("Reconcile")
	if f.ReconcileFunc != nil {
		return f.ReconcileFunc(ctx, membershipID)
	}
	return &pointsservice.Reconciliation{MembershipID: membershipID, Consistent: true}, nil
}

func (f *FakeService) CreateSeason(ctx context.Context, req pointsservice.CreateSeasonRequest) (*pointsservice.SeasonView, error) {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, req)
	}
	return &pointsservice.SeasonView{Name: req.Name}, nil
}

func (f *FakeService) ActivateSeason(ctx context.Context, seasonID string) (*pointsservice.SeasonView, error) {
	f.record("ActivateSeason")
	if f.ActivateSeasonFunc != nil {
		return f.ActivateSeasonFunc(ctx, seasonID)
	}
	return &pointsservice.SeasonView{ID: seasonID, IsActive: true}, nil
}

func (f *FakeService) GetActiveSeason(ctx context.Context) (*pointsservice.SeasonView, error) {
	f.record("GetActiveSeason")
	if f.GetActiveSeasonFunc != nil {
		return f.GetActiveSeasonFunc(ctx)
	}
	return nil, pointsservice.ErrNoActiveSeason
}

func (f *FakeService) ListArchivedSeasons(ctx context.Context, page int) (*pointsservice.SeasonArchivePage, error) {
	f.record("ListArchivedSeasons")
	if f.ListArchivedSeasonsFunc != nil {
		return f.ListArchivedSeasonsFunc(ctx, page)
	}
	return &pointsservice.SeasonArchivePage{}, nil
}

func (f *FakeService) EnsureMembership(ctx context.Context, seasonID, userID string) (*pointsservice.MembershipView, error) {
	f.record("EnsureMembership")
	if f.EnsureMembershipFunc != nil {
		return f.EnsureMembershipFunc(ctx, seasonID, userID)
	}
	return &pointsservice.MembershipView{SeasonID: seasonID, UserID: userID}, nil
}

func (f *FakeService) GetLeaderboard(ctx context.Context, query pointsservice.LeaderboardQuery) (*pointsservice.LeaderboardPage, error) {
	f.record("GetLeaderboard")
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, query)
	}
	return &pointsservice.LeaderboardPage{}, nil
}

func (f *FakeService) GetLedgerHistory(ctx context.Context, membershipID int64, limit int) ([]pointsservice.LedgerEntryView, error) {
	f.record("GetLedgerHistory")
	if f.GetLedgerHistoryFunc != nil {
		return f.GetLedgerHistoryFunc(ctx, membershipID, limit)
	}
	return nil, nil
}

func (f *FakeService) ExportLeaderboardXLSX(ctx context.Context, seasonID string) ([]byte, error) {
	f.record("ExportLeaderboardXLSX")
	if f.ExportLeaderboardXLSXFunc != nil {
		return f.ExportLeaderboardXLSXFunc(ctx, seasonID)
	}
	return nil, nil
}

func (f *FakeService) RenderPointsHistoryChart(ctx context.Context, membershipID int64) ([]byte, error) {
	f.record("RenderPointsHistoryChart")
	if f.RenderPointsHistoryChartFunc != nil {
		return f.RenderPointsHistoryChartFunc(ctx, membershipID)
	}
	return nil, nil
}

var _ pointsservice.Service = (*FakeService)(nil)
