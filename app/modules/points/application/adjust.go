package pointsservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/uptrace/bun"
)

// AdjustPoints posts a manual, event-less correction to one membership.
func (s *PointsService) AdjustPoints(ctx context.Context, req AdjustmentRequest) (*ApplyResult, error) {
	adjustTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ApplyResult, error], error) {
		return s.adjustPointsLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "AdjustPoints", strconv.FormatInt(req.MembershipID, 10), func(ctx context.Context) (results.OperationResult[*ApplyResult, error], error) {
		return runInTx(s, ctx, adjustTx)
	})
	return unwrap(result, err)
}

func (s *PointsService) adjustPointsLogic(ctx context.Context, db bun.IDB, req AdjustmentRequest) (results.OperationResult[*ApplyResult, error], error) {
	if req.Delta == 0 {
		return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: delta must be non-zero", ErrInvalidRequest)), nil
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: reason is required", ErrInvalidRequest)), nil
	}

	requestID := strings.TrimSpace(req.RequestID)
	if len(requestID) > maxRequestIDLength {
		return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: request id longer than %d characters", ErrInvalidRequest, maxRequestIDLength)), nil
	}

	membership, err := s.repo.GetMembership(ctx, db, req.MembershipID)
	if err != nil {
		if errors.Is(err, pointsdb.ErrNotFound) {
			return results.FailureResult[*ApplyResult, error](ErrMembershipNotFound), nil
		}
		return results.OperationResult[*ApplyResult, error]{}, fmt.Errorf("failed to load membership: %w", err)
	}

	if requestID != "" {
		prior, err := s.priorAdjustment(ctx, db, membership, requestID)
		if err != nil {
			return results.OperationResult[*ApplyResult, error]{}, err
		}
		if prior != nil {
			return results.SuccessResult[*ApplyResult, error](prior), nil
		}
	}

	return s.applyDeltasLogic(ctx, db, ApplyRequest{
		SeasonID:  membership.SeasonID,
		Kind:      pointsdomain.KindManual,
		Deltas:    pointsdomain.Deltas{membership.ID: req.Delta},
		Reason:    reason,
		RequestID: requestID,
	})
}

// maxRequestIDLength matches points_ledger.request_id.
const maxRequestIDLength = 64

// priorAdjustment locks the membership and looks for an entry already posted
// under requestID. The lock makes a concurrent duplicate wait for the first
// delivery to commit, so it sees that entry instead of posting its own.
func (s *PointsService) priorAdjustment(ctx context.Context, db bun.IDB, membership *pointsdb.SeasonMembership, requestID string) (*ApplyResult, error) {
	locked, err := s.repo.LockMemberships(ctx, db, membership.SeasonID, []int64{membership.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to lock membership: %w", err)
	}
	balance := membership.Points
	if len(locked) > 0 {
		balance = locked[0].Points
	}

	entry, err := s.repo.FindLedgerEntryByRequest(ctx, db, membership.ID, requestID)
	if err != nil {
		if errors.Is(err, pointsdb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up request %q: %w", requestID, err)
	}

	s.logger.InfoContext(ctx, "Adjustment already applied",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("membership_id", membership.ID),
		attr.String("request_id", requestID),
	)
	return &ApplyResult{
		Applied:        []AppliedDelta{{MembershipID: membership.ID, Delta: entry.PointsDelta, Balance: balance}},
		AlreadyApplied: true,
	}, nil
}

// Reconcile compares a membership's balance with the sum of its ledger.
func (s *PointsService) Reconcile(ctx context.Context, membershipID int64) (*Reconciliation, error) {
	result, err := withTelemetry(s, ctx, "Reconcile", strconv.FormatInt(membershipID, 10), func(ctx context.Context) (results.OperationResult[*Reconciliation, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*Reconciliation, error], error) {
			membership, err := s.repo.GetMembership(ctx, db, membershipID)
			if err != nil {
				if errors.Is(err, pointsdb.ErrNotFound) {
					return results.FailureResult[*Reconciliation, error](ErrMembershipNotFound), nil
				}
				return results.OperationResult[*Reconciliation, error]{}, fmt.Errorf("failed to load membership: %w", err)
			}
			total, err := s.repo.SumLedger(ctx, db, membershipID)
			if err != nil {
				return results.OperationResult[*Reconciliation, error]{}, err
			}
			return results.SuccessResult[*Reconciliation, error](&Reconciliation{
				MembershipID: membershipID,
				Balance:      membership.Points,
				LedgerTotal:  total,
				Consistent:   membership.Points == total,
			}), nil
		})
	})
	return unwrap(result, err)
}
