package pointsservice

import (
	"context"
	"fmt"
	"time"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Points Repo
// ------------------------

type FakeRepo struct {
	trace []string

	LockMembershipsFunc          func(ctx context.Context, db bun.IDB, seasonID string, ids []int64) ([]pointsdb.SeasonMembership, error)
	LockPositiveMembershipsFunc  func(ctx context.Context, db bun.IDB, seasonID string) ([]pointsdb.SeasonMembership, error)
	AddPointsFunc                func(ctx context.Context, db bun.IDB, membershipID int64, delta int) error
	GetMembershipFunc            func(ctx context.Context, db bun.IDB, membershipID int64) (*pointsdb.SeasonMembership, error)
	GetOrCreateMembershipFunc    func(ctx context.Context, db bun.IDB, seasonID, userID string) (*pointsdb.SeasonMembership, error)
	FindMembershipsByUsersFunc   func(ctx context.Context, db bun.IDB, seasonID string, userIDs []string) ([]pointsdb.SeasonMembership, error)
	ListStandingsFunc            func(ctx context.Context, db bun.IDB, filter pointsdb.StandingsFilter, limit, offset int) ([]pointsdb.Standing, error)
	CountMembershipsFunc         func(ctx context.Context, db bun.IDB, filter pointsdb.StandingsFilter) (int, error)
	InsertLedgerEntriesFunc      func(ctx context.Context, db bun.IDB, entries []*pointsdb.LedgerEntry) error
	ListLedgerEntriesFunc        func(ctx context.Context, db bun.IDB, membershipID int64, limit int) ([]pointsdb.LedgerEntry, error)
	SumLedgerFunc                func(ctx context.Context, db bun.IDB, membershipID int64) (int, error)
	FindLedgerEntryByRequestFunc func(ctx context.Context, db bun.IDB, membershipID int64, requestID string) (*pointsdb.LedgerEntry, error)
	GetEventRunFunc              func(ctx context.Context, db bun.IDB, eventID int64, phase string) (*pointsdb.EventRun, error)
	InsertEventRunFunc           func(ctx context.Context, db bun.IDB, run *pointsdb.EventRun) error
	CreateSeasonFunc             func(ctx context.Context, db bun.IDB, season *pointsdb.Season) error
	GetSeasonFunc                func(ctx context.Context, db bun.IDB, seasonID string) (*pointsdb.Season, error)
	GetActiveSeasonFunc          func(ctx context.Context, db bun.IDB) (*pointsdb.Season, error)
	ActivateSeasonFunc           func(ctx context.Context, db bun.IDB, seasonID string, now time.Time) error
	ListArchivedSeasonsFunc      func(ctx context.Context, db bun.IDB, limit, offset int) ([]pointsdb.Season, error)
	CountArchivedSeasonsFunc     func(ctx context.Context, db bun.IDB) (int, error)
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		trace: []string{},
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRepo) LockMemberships(ctx context.Context, db bun.IDB, seasonID string, ids []int64) ([]pointsdb.SeasonMembership, error) {
	f.record("LockMemberships")
	if f.LockMembershipsFunc != nil {
		return f.LockMembershipsFunc(ctx, db, seasonID, ids)
	}
	return nil, nil
}

func (f *FakeRepo) LockPositiveMemberships(ctx context.Context, db bun.IDB, seasonID string) ([]pointsdb.SeasonMembership, error) {
	f.record("LockPositiveMemberships")
	if f.LockPositiveMembershipsFunc != nil {
		return f.LockPositiveMembershipsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeRepo) AddPoints(ctx context.Context, db bun.IDB, membershipID int64, delta int) error {
	f.record("AddPoints")
	if f.AddPointsFunc != nil {
		return f.AddPointsFunc(ctx, db, membershipID, delta)
	}
	return nil
}

func (f *FakeRepo) GetMembership(ctx context.Context, db bun.IDB, membershipID int64) (*pointsdb.SeasonMembership, error) {
	f.record("GetMembership")
	if f.GetMembershipFunc != nil {
		return f.GetMembershipFunc(ctx, db, membershipID)
	}
	return nil, pointsdb.ErrNotFound
}

func (f *FakeRepo) GetOrCreateMembership(ctx context.Context, db bun.IDB, seasonID, userID string) (*pointsdb.SeasonMembership, error) {
	f.record("GetOrCreateMembership")
	if f.GetOrCreateMembershipFunc != nil {
		return f.GetOrCreateMembershipFunc(ctx, db, seasonID, userID)
	}
	return &pointsdb.SeasonMembership{SeasonID: seasonID, UserID: userID}, nil
}

func (f *FakeRepo) FindMembershipsByUsers(ctx context.Context, db bun.IDB, seasonID string, userIDs []string) ([]pointsdb.SeasonMembership, error) {
	f.record("FindMembershipsByUsers")
	if f.FindMembershipsByUsersFunc != nil {
		return f.FindMembershipsByUsersFunc(ctx, db, seasonID, userIDs)
	}
	return nil, nil
}

func (f *FakeRepo) ListStandings(ctx context.Context, db bun.IDB, filter pointsdb.StandingsFilter, limit, offset int) ([]pointsdb.Standing, error) {
	f.record("ListStandings")
	if f.ListStandingsFunc != nil {
		return f.ListStandingsFunc(ctx, db, filter, limit, offset)
	}
	return nil, nil
}

func (f *FakeRepo) CountMemberships(ctx context.Context, db bun.IDB, filter pointsdb.StandingsFilter) (int, error) {
	f.record("CountMemberships")
	if f.CountMembershipsFunc != nil {
		return f.CountMembershipsFunc(ctx, db, filter)
	}
	return 0, nil
}

func (f *FakeRepo) InsertLedgerEntries(ctx context.Context, db bun.IDB, entries []*pointsdb.LedgerEntry) error {
	f.record("InsertLedgerEntries")
	if f.InsertLedgerEntriesFunc != nil {
		return f.InsertLedgerEntriesFunc(ctx, db, entries)
	}
	return nil
}

func (f *FakeRepo) ListLedgerEntries(ctx context.Context, db bun.IDB, membershipID int64, limit int) ([]pointsdb.LedgerEntry, error) {
	f.record("ListLedgerEntries")
	if f.ListLedgerEntriesFunc != nil {
		return f.ListLedgerEntriesFunc(ctx, db, membershipID, limit)
	}
	return nil, nil
}

func (f *FakeRepo) SumLedger(ctx context.Context, db bun.IDB, membershipID int64) (int, error) {
	f.record("SumLedger")
	if f.SumLedgerFunc != nil {
		return f.SumLedgerFunc(ctx, db, membershipID)
	}
	return 0, nil
}

func (f *FakeRepo) FindLedgerEntryByRequest(ctx context.Context, db bun.IDB, membershipID int64, requestID string) (*pointsdb.LedgerEntry, error) {
	f.record("FindLedgerEntryByRequest")
	if f.FindLedgerEntryByRequestFunc != nil {
		return f.FindLedgerEntryByRequestFunc(ctx, db, membershipID, requestID)
	}
	return nil, pointsdb.ErrNotFound
}

func (f *FakeRepo) GetEventRun(ctx context.Context, db bun.IDB, eventID int64, phase string) (*pointsdb.EventRun, error) {
	f.record("GetEventRun")
	if f.GetEventRunFunc != nil {
		return f.GetEventRunFunc(ctx, db, eventID, phase)
	}
	return nil, pointsdb.ErrNotFound
}

func (f *FakeRepo) InsertEventRun(ctx context.Context, db bun.IDB, run *pointsdb.EventRun) error {
	f.record("InsertEventRun")
	if f.InsertEventRunFunc != nil {
		return f.InsertEventRunFunc(ctx, db, run)
	}
	return nil
}

func (f *FakeRepo) CreateSeason(ctx context.Context, db bun.IDB, season *pointsdb.Season) error {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, db, season)
	}
	return nil
}

func (f *FakeRepo) GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*pointsdb.Season, error) {
	f.record("GetSeason")
	if f.GetSeasonFunc != nil {
		return f.GetSeasonFunc(ctx, db, seasonID)
	}
	return nil, pointsdb.ErrNotFound
}

func (f *FakeRepo) GetActiveSeason(ctx context.Context, db bun.IDB) (*pointsdb.Season, error) {
	f.record("GetActiveSeason")
	if f.GetActiveSeasonFunc != nil {
		return f.GetActiveSeasonFunc(ctx, db)
	}
	return nil, pointsdb.ErrNotFound
}

func (f *FakeRepo) ActivateSeason(ctx context.Context, db bun.IDB, seasonID string, now time.Time) error {
	f.record("ActivateSeason")
	if f.ActivateSeasonFunc != nil {
		return f.ActivateSeasonFunc(ctx, db, seasonID, now)
	}
	return nil
}

func (f *FakeRepo) ListArchivedSeasons(ctx context.Context, db bun.IDB, limit, offset int) ([]pointsdb.Season, error) {
	f.record("ListArchivedSeasons")
	if f.ListArchivedSeasonsFunc != nil {
		return f.ListArchivedSeasonsFunc(ctx, db, limit, offset)
	}
	return nil, nil
}

func (f *FakeRepo) CountArchivedSeasons(ctx context.Context, db bun.IDB) (int, error) {
	f.record("CountArchivedSeasons")
	if f.CountArchivedSeasonsFunc != nil {
		return f.CountArchivedSeasonsFunc(ctx, db)
	}
	return 0, nil
}

// --- Accessors for assertions ---

func (f *FakeRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ pointsdb.Repository = (*FakeRepo)(nil)

// ------------------------
// In-memory balances
// ------------------------

// memoryLedger backs a FakeRepo with maps so multi-step flows can be asserted
// on final balances.
type memoryLedger struct {
	memberships map[int64]*pointsdb.SeasonMembership
	entries     []pointsdb.LedgerEntry
	runs        map[string]*pointsdb.EventRun
}

func newMemoryLedger(memberships ...pointsdb.SeasonMembership) *memoryLedger {
	m := &memoryLedger{
		memberships: make(map[int64]*pointsdb.SeasonMembership),
		runs:        make(map[string]*pointsdb.EventRun),
	}
	for i := range memberships {
		ms := memberships[i]
		m.memberships[ms.ID] = &ms
	}
	return m
}

func runKey(eventID int64, phase string) string {
	return fmt.Sprintf("%d/%s", eventID, phase)
}

func (m *memoryLedger) wire(f *FakeRepo) *FakeRepo {
	f.LockMembershipsFunc = func(_ context.Context, _ bun.IDB, seasonID string, ids []int64) ([]pointsdb.SeasonMembership, error) {
		var out []pointsdb.SeasonMembership
		for _, id := range ids {
			if ms, ok := m.memberships[id]; ok && ms.SeasonID == seasonID {
				out = append(out, *ms)
			}
		}
		return out, nil
	}
	f.LockPositiveMembershipsFunc = func(_ context.Context, _ bun.IDB, seasonID string) ([]pointsdb.SeasonMembership, error) {
		var out []pointsdb.SeasonMembership
		for _, ms := range m.memberships {
			if ms.SeasonID == seasonID && ms.Points > 0 {
				out = append(out, *ms)
			}
		}
		return out, nil
	}
	f.AddPointsFunc = func(_ context.Context, _ bun.IDB, id int64, delta int) error {
		ms, ok := m.memberships[id]
		if !ok {
			return pointsdb.ErrNoRowsAffected
		}
		ms.Points += delta
		return nil
	}
	f.GetMembershipFunc = func(_ context.Context, _ bun.IDB, id int64) (*pointsdb.SeasonMembership, error) {
		ms, ok := m.memberships[id]
		if !ok {
			return nil, pointsdb.ErrNotFound
		}
		cp := *ms
		return &cp, nil
	}
	f.InsertLedgerEntriesFunc = func(_ context.Context, _ bun.IDB, entries []*pointsdb.LedgerEntry) error {
		for _, e := range entries {
			m.entries = append(m.entries, *e)
		}
		return nil
	}
	f.SumLedgerFunc = func(_ context.Context, _ bun.IDB, id int64) (int, error) {
		total := 0
		for _, e := range m.entries {
			if e.MembershipID == id {
				total += e.PointsDelta
			}
		}
		return total, nil
	}
	f.FindLedgerEntryByRequestFunc = func(_ context.Context, _ bun.IDB, id int64, requestID string) (*pointsdb.LedgerEntry, error) {
		for i := range m.entries {
			e := m.entries[i]
			if e.MembershipID == id && e.RequestID != nil && *e.RequestID == requestID {
				return &e, nil
			}
		}
		return nil, pointsdb.ErrNotFound
	}
	f.GetEventRunFunc = func(_ context.Context, _ bun.IDB, eventID int64, phase string) (*pointsdb.EventRun, error) {
		run, ok := m.runs[runKey(eventID, phase)]
		if !ok {
			return nil, pointsdb.ErrNotFound
		}
		return run, nil
	}
	f.InsertEventRunFunc = func(_ context.Context, _ bun.IDB, run *pointsdb.EventRun) error {
		key := runKey(run.EventID, run.Phase)
		if _, ok := m.runs[key]; ok {
			return pointsdb.ErrDuplicateLedgerEntry
		}
		m.runs[key] = run
		return nil
	}
	return f
}

func (m *memoryLedger) points(id int64) int {
	return m.memberships[id].Points
}
