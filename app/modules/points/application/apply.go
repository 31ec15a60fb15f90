package pointsservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/uptrace/bun"
)

// ApplyDeltas locks the referenced memberships, adds each delta to its balance
// and appends one ledger entry per applied delta, all in one transaction.
// A duplicate ledger entry rolls the whole batch back.
func (s *PointsService) ApplyDeltas(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	applyTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ApplyResult, error], error) {
		return s.applyDeltasLogic(ctx, db, req)
	}

	result, err := withTelemetry(s, ctx, "ApplyDeltas", applyIdentifier(req), func(ctx context.Context) (results.OperationResult[*ApplyResult, error], error) {
		return runInTx(s, ctx, applyTx)
	})
	return unwrap(result, err)
}

func applyIdentifier(req ApplyRequest) string {
	if req.EventID == nil {
		return req.SeasonID + "/" + string(req.Kind)
	}
	return req.SeasonID + "/" + strconv.FormatInt(*req.EventID, 10) + "/" + string(req.Kind)
}

// applyDeltasLogic must run inside a transaction so the row locks it takes
// are held until commit.
func (s *PointsService) applyDeltasLogic(ctx context.Context, db bun.IDB, req ApplyRequest) (results.OperationResult[*ApplyResult, error], error) {
	if strings.TrimSpace(req.SeasonID) == "" {
		return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: season is required", ErrInvalidRequest)), nil
	}
	if !req.Kind.Valid() {
		return results.FailureResult[*ApplyResult, error](fmt.Errorf("%w: unknown ledger kind %q", ErrInvalidRequest, req.Kind)), nil
	}

	out := &ApplyResult{Applied: []AppliedDelta{}}
	if len(req.Deltas) == 0 {
		return results.SuccessResult[*ApplyResult, error](out), nil
	}

	ids := req.Deltas.MembershipIDs()
	locked, err := s.repo.LockMemberships(ctx, db, req.SeasonID, ids)
	if err != nil {
		return results.OperationResult[*ApplyResult, error]{}, fmt.Errorf("failed to lock memberships: %w", err)
	}

	balances := make(map[int64]int, len(locked))
	for _, m := range locked {
		balances[m.ID] = m.Points
	}

	reason := pointsdomain.TruncateReason(req.Reason)
	var requestID *string
	if req.RequestID != "" {
		requestID = &req.RequestID
	}
	entries := make([]*pointsdb.LedgerEntry, 0, len(locked))
	for _, id := range ids {
		balance, ok := balances[id]
		if !ok {
			out.Skipped = append(out.Skipped, id)
			continue
		}
		delta := req.Deltas[id]
		if err := s.repo.AddPoints(ctx, db, id, delta); err != nil {
			return results.OperationResult[*ApplyResult, error]{}, fmt.Errorf("failed to update membership %d: %w", id, err)
		}
		entries = append(entries, &pointsdb.LedgerEntry{
			MembershipID: id,
			EventID:      req.EventID,
			Kind:         string(req.Kind),
			PointsDelta:  delta,
			Reason:       reason,
			RequestID:    requestID,
		})
		out.Applied = append(out.Applied, AppliedDelta{MembershipID: id, Delta: delta, Balance: balance + delta})
	}

	if err := s.repo.InsertLedgerEntries(ctx, db, entries); err != nil {
		return results.OperationResult[*ApplyResult, error]{}, fmt.Errorf("failed to write ledger: %w", err)
	}

	if len(out.Skipped) > 0 {
		s.logger.InfoContext(ctx, "Skipped deltas without a season membership",
			attr.ExtractCorrelationID(ctx),
			attr.String("season_id", req.SeasonID),
			attr.Any("membership_ids", out.Skipped),
		)
	}
	if s.metrics != nil {
		s.metrics.RecordLedgerEntries(ctx, string(req.Kind), len(entries))
		s.metrics.RecordSkippedDeltas(ctx, string(req.Kind), len(out.Skipped))
	}

	return results.SuccessResult[*ApplyResult, error](out), nil
}
