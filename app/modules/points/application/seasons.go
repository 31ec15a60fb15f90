package pointsservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
)

// CreateSeason stores a new season under the slug of its name, optionally
// making it the active season.
func (s *PointsService) CreateSeason(ctx context.Context, req CreateSeasonRequest) (*SeasonView, error) {
	result, err := withTelemetry(s, ctx, "CreateSeason", req.Name, func(ctx context.Context) (results.OperationResult[*SeasonView, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SeasonView, error], error) {
			return s.createSeasonLogic(ctx, db, req)
		})
	})
	return unwrap(result, err)
}

func (s *PointsService) createSeasonLogic(ctx context.Context, db bun.IDB, req CreateSeasonRequest) (results.OperationResult[*SeasonView, error], error) {
	name := strings.TrimSpace(req.Name)
	id := slug.Make(name)
	if id == "" {
		return results.FailureResult[*SeasonView, error](fmt.Errorf("%w: season name is required", ErrInvalidRequest)), nil
	}
	if req.StartDate.IsZero() {
		return results.FailureResult[*SeasonView, error](fmt.Errorf("%w: start date is required", ErrInvalidRequest)), nil
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return results.FailureResult[*SeasonView, error](fmt.Errorf("%w: end date precedes start date", ErrInvalidRequest)), nil
	}

	if _, err := s.repo.GetSeason(ctx, db, id); err == nil {
		return results.FailureResult[*SeasonView, error](fmt.Errorf("%w: %s", ErrSeasonExists, id)), nil
	} else if !errors.Is(err, pointsdb.ErrNotFound) {
		return results.OperationResult[*SeasonView, error]{}, fmt.Errorf("failed to check season: %w", err)
	}

	season := &pointsdb.Season{ID: id, Name: name, StartDate: req.StartDate}
	if req.EndDate != nil {
		season.EndDate = *req.EndDate
	}
	if err := s.repo.CreateSeason(ctx, db, season); err != nil {
		return results.OperationResult[*SeasonView, error]{}, fmt.Errorf("failed to create season: %w", err)
	}
	if req.Activate {
		if err := s.repo.ActivateSeason(ctx, db, id, s.opts.Now()); err != nil {
			return results.OperationResult[*SeasonView, error]{}, fmt.Errorf("failed to activate season: %w", err)
		}
		season.IsActive = true
	}

	return results.SuccessResult[*SeasonView, error](toSeasonView(season)), nil
}

// ActivateSeason makes seasonID the only active season.
func (s *PointsService) ActivateSeason(ctx context.Context, seasonID string) (*SeasonView, error) {
	result, err := withTelemetry(s, ctx, "ActivateSeason", seasonID, func(ctx context.Context) (results.OperationResult[*SeasonView, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*SeasonView, error], error) {
			if err := s.repo.ActivateSeason(ctx, db, seasonID, s.opts.Now()); err != nil {
				if errors.Is(err, pointsdb.ErrNotFound) {
					return results.FailureResult[*SeasonView, error](ErrSeasonNotFound), nil
				}
				return results.OperationResult[*SeasonView, error]{}, err
			}
			season, err := s.repo.GetSeason(ctx, db, seasonID)
			if err != nil {
				return results.OperationResult[*SeasonView, error]{}, err
			}
			return results.SuccessResult[*SeasonView, error](toSeasonView(season)), nil
		})
	})
	return unwrap(result, err)
}

// GetActiveSeason returns the active season or ErrNoActiveSeason.
func (s *PointsService) GetActiveSeason(ctx context.Context) (*SeasonView, error) {
	result, err := withTelemetry(s, ctx, "GetActiveSeason", "active", func(ctx context.Context) (results.OperationResult[*SeasonView, error], error) {
		season, err := s.repo.GetActiveSeason(ctx, nil)
		if err != nil {
			if errors.Is(err, pointsdb.ErrNotFound) {
				return results.FailureResult[*SeasonView, error](ErrNoActiveSeason), nil
			}
			return results.OperationResult[*SeasonView, error]{}, err
		}
		return results.SuccessResult[*SeasonView, error](toSeasonView(season)), nil
	})
	return unwrap(result, err)
}

// ListArchivedSeasons pages through inactive seasons, newest first.
func (s *PointsService) ListArchivedSeasons(ctx context.Context, page int) (*SeasonArchivePage, error) {
	result, err := withTelemetry(s, ctx, "ListArchivedSeasons", fmt.Sprint(page), func(ctx context.Context) (results.OperationResult[*SeasonArchivePage, error], error) {
		total, err := s.repo.CountArchivedSeasons(ctx, nil)
		if err != nil {
			return results.OperationResult[*SeasonArchivePage, error]{}, err
		}
		p, offset, err := paginate(page, s.opts.ArchivePageSize, total)
		if err != nil {
			return results.FailureResult[*SeasonArchivePage, error](err), nil
		}
		seasons, err := s.repo.ListArchivedSeasons(ctx, nil, p.Size, offset)
		if err != nil {
			return results.OperationResult[*SeasonArchivePage, error]{}, err
		}
		out := &SeasonArchivePage{Seasons: make([]SeasonView, 0, len(seasons)), Page: p}
		for i := range seasons {
			out.Seasons = append(out.Seasons, *toSeasonView(&seasons[i]))
		}
		return results.SuccessResult[*SeasonArchivePage, error](out), nil
	})
	return unwrap(result, err)
}

// EnsureMembership returns the user's membership in a season, creating it if needed.
func (s *PointsService) EnsureMembership(ctx context.Context, seasonID, userID string) (*MembershipView, error) {
	result, err := withTelemetry(s, ctx, "EnsureMembership", seasonID+"/"+userID, func(ctx context.Context) (results.OperationResult[*MembershipView, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*MembershipView, error], error) {
			if strings.TrimSpace(userID) == "" {
				return results.FailureResult[*MembershipView, error](fmt.Errorf("%w: user is required", ErrInvalidRequest)), nil
			}
			if _, err := s.repo.GetSeason(ctx, db, seasonID); err != nil {
				if errors.Is(err, pointsdb.ErrNotFound) {
					return results.FailureResult[*MembershipView, error](ErrSeasonNotFound), nil
				}
				return results.OperationResult[*MembershipView, error]{}, err
			}
			m, err := s.repo.GetOrCreateMembership(ctx, db, seasonID, userID)
			if err != nil {
				return results.OperationResult[*MembershipView, error]{}, err
			}
			return results.SuccessResult[*MembershipView, error](toMembershipView(m)), nil
		})
	})
	return unwrap(result, err)
}

func toSeasonView(s *pointsdb.Season) *SeasonView {
	v := &SeasonView{ID: s.ID, Name: s.Name, StartDate: s.StartDate, IsActive: s.IsActive}
	if !s.EndDate.IsZero() {
		end := s.EndDate
		v.EndDate = &end
	}
	return v
}

func toMembershipView(m *pointsdb.SeasonMembership) *MembershipView {
	return &MembershipView{ID: m.ID, SeasonID: m.SeasonID, UserID: m.UserID, Points: m.Points, Rebuys: m.Rebuys}
}
