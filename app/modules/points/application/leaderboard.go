package pointsservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/uptrace/bun"
)

// paginate validates a 1-based page number. Page 1 of an empty set is valid.
func paginate(page, size, total int) (Page, int, error) {
	if page < 1 {
		return Page{}, 0, fmt.Errorf("%w: page must be >= 1", ErrInvalidRequest)
	}
	pages := (total + size - 1) / size
	if page > max(pages, 1) {
		return Page{}, 0, fmt.Errorf("%w: page %d out of range (%d pages)", ErrInvalidRequest, page, pages)
	}
	return Page{Number: page, Size: size, TotalItems: total, TotalPages: pages}, (page - 1) * size, nil
}

// GetLeaderboard returns a page of a season's standings, highest balance first.
func (s *PointsService) GetLeaderboard(ctx context.Context, query LeaderboardQuery) (*LeaderboardPage, error) {
	result, err := withTelemetry(s, ctx, "GetLeaderboard", query.SeasonID, func(ctx context.Context) (results.OperationResult[*LeaderboardPage, error], error) {
		return s.getLeaderboardLogic(ctx, nil, query)
	})
	return unwrap(result, err)
}

func (s *PointsService) resolveSeason(ctx context.Context, db bun.IDB, seasonID string) (*pointsdb.Season, error) {
	if seasonID == "" {
		season, err := s.repo.GetActiveSeason(ctx, db)
		if errors.Is(err, pointsdb.ErrNotFound) {
			return nil, ErrNoActiveSeason
		}
		return season, err
	}
	season, err := s.repo.GetSeason(ctx, db, seasonID)
	if errors.Is(err, pointsdb.ErrNotFound) {
		return nil, ErrSeasonNotFound
	}
	return season, err
}

func isDomainLookupError(err error) bool {
	return errors.Is(err, ErrNoActiveSeason) || errors.Is(err, ErrSeasonNotFound) || errors.Is(err, ErrMembershipNotFound)
}

func (s *PointsService) getLeaderboardLogic(ctx context.Context, db bun.IDB, query LeaderboardQuery) (results.OperationResult[*LeaderboardPage, error], error) {
	page := query.Page
	if page == 0 {
		page = 1
	}

	season, err := s.resolveSeason(ctx, db, query.SeasonID)
	if err != nil {
		if isDomainLookupError(err) {
			return results.FailureResult[*LeaderboardPage, error](err), nil
		}
		return results.OperationResult[*LeaderboardPage, error]{}, err
	}

	filter := pointsdb.StandingsFilter{SeasonID: season.ID, Search: query.Search}
	total, err := s.repo.CountMemberships(ctx, db, filter)
	if err != nil {
		return results.OperationResult[*LeaderboardPage, error]{}, err
	}
	p, offset, err := paginate(page, s.opts.LeaderboardPageSize, total)
	if err != nil {
		return results.FailureResult[*LeaderboardPage, error](err), nil
	}

	standings, err := s.repo.ListStandings(ctx, db, filter, p.Size, offset)
	if err != nil {
		return results.OperationResult[*LeaderboardPage, error]{}, err
	}

	out := &LeaderboardPage{Season: *toSeasonView(season), Rows: make([]LeaderboardRow, 0, len(standings)), Page: p}
	for i, st := range standings {
		out.Rows = append(out.Rows, LeaderboardRow{
			Rank:         offset + i + 1,
			MembershipID: st.MembershipID,
			UserID:       st.UserID,
			Points:       st.Points,
			Rebuys:       st.Rebuys,
		})
	}
	return results.SuccessResult[*LeaderboardPage, error](out), nil
}

// GetLedgerHistory returns a membership's ledger, newest first.
func (s *PointsService) GetLedgerHistory(ctx context.Context, membershipID int64, limit int) ([]LedgerEntryView, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	result, err := withTelemetry(s, ctx, "GetLedgerHistory", strconv.FormatInt(membershipID, 10), func(ctx context.Context) (results.OperationResult[[]LedgerEntryView, error], error) {
		if _, err := s.repo.GetMembership(ctx, nil, membershipID); err != nil {
			if errors.Is(err, pointsdb.ErrNotFound) {
				return results.FailureResult[[]LedgerEntryView, error](ErrMembershipNotFound), nil
			}
			return results.OperationResult[[]LedgerEntryView, error]{}, err
		}
		entries, err := s.repo.ListLedgerEntries(ctx, nil, membershipID, limit)
		if err != nil {
			return results.OperationResult[[]LedgerEntryView, error]{}, err
		}
		return results.SuccessResult[[]LedgerEntryView, error](toLedgerViews(entries)), nil
	})
	return unwrap(result, err)
}

func toLedgerViews(entries []pointsdb.LedgerEntry) []LedgerEntryView {
	views := make([]LedgerEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, LedgerEntryView{
			ID:          e.ID,
			EventID:     e.EventID,
			Kind:        e.Kind,
			PointsDelta: e.PointsDelta,
			Reason:      e.Reason,
			CreatedAt:   e.CreatedAt,
		})
	}
	return views
}
