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

// Completion outcomes recorded in metrics.
const (
	outcomeScored  = "scored"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// CompleteEvent scores a finished event and then applies season decay.
// The two phases commit separately. Each phase records a run fingerprint, so
// redelivering the same event only runs the phases that have not committed yet.
func (s *PointsService) CompleteEvent(ctx context.Context, event pointsdomain.EventSnapshot) (*CompletionResult, error) {
	result, err := withTelemetry(s, ctx, "CompleteEvent", strconv.FormatInt(event.ID, 10), func(ctx context.Context) (results.OperationResult[*CompletionResult, error], error) {
		return s.completeEventLogic(ctx, event)
	})

	out, err := unwrap(result, err)
	s.recordCompletion(ctx, out, err)
	return out, err
}

// recordCompletion counts one completion attempt by outcome.
func (s *PointsService) recordCompletion(ctx context.Context, out *CompletionResult, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.RecordEventCompletion(ctx, outcomeFailed)
	case out != nil && out.Skipped:
		s.metrics.RecordEventCompletion(ctx, outcomeSkipped)
	default:
		s.metrics.RecordEventCompletion(ctx, outcomeScored)
	}
}

func (s *PointsService) completeEventLogic(ctx context.Context, event pointsdomain.EventSnapshot) (results.OperationResult[*CompletionResult, error], error) {
	out := &CompletionResult{EventID: event.ID, SeasonID: event.SeasonID}

	if strings.TrimSpace(event.SeasonID) == "" {
		s.logger.InfoContext(ctx, "Event is not part of a season; skipping scoring",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("event_id", event.ID),
		)
		out.Skipped, out.SkipReason = true, "event has no season"
		return results.SuccessResult[*CompletionResult, error](out), nil
	}
	configured := strings.TrimSpace(event.ScoringStrategy)
	if configured == "" {
		s.logger.InfoContext(ctx, "Event has no scoring strategy defined; skipping scoring",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("event_id", event.ID),
		)
		out.Skipped, out.SkipReason = true, "event has no scoring strategy"
		return results.SuccessResult[*CompletionResult, error](out), nil
	}

	strategy := s.scoring.Resolve(configured)
	if !s.scoring.Has(configured) {
		s.logger.WarnContext(ctx, "Unknown scoring strategy; using default",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("event_id", event.ID),
			attr.String("configured", configured),
			attr.String("resolved", strategy.Key()),
		)
	}

	scoring, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*PhaseOutcome, error], error) {
		return s.runPhaseLogic(ctx, db, event, phasePlan{
			phase:  pointsdomain.PhaseScoring,
			kind:   pointsdomain.KindScoring,
			key:    strategy.Key(),
			reason: pointsdomain.ScoringReason(event.ID, strategy.Key()),
			compute: func(context.Context, bun.IDB) (pointsdomain.Deltas, error) {
				return strategy.Calculate(event), nil
			},
		})
	})
	if err != nil {
		return results.OperationResult[*CompletionResult, error]{}, fmt.Errorf("scoring phase: %w", err)
	}
	if scoring.IsFailure() {
		return results.FailureResult[*CompletionResult, error](*scoring.Failure), nil
	}
	out.Scoring = *scoring.Success

	decayStrategy := s.decay.Resolve(s.opts.DecayStrategy)
	decay, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*PhaseOutcome, error], error) {
		return s.runPhaseLogic(ctx, db, event, phasePlan{
			phase:  pointsdomain.PhaseDecay,
			kind:   pointsdomain.KindDecay,
			key:    decayStrategy.Key(),
			reason: pointsdomain.DecayReason(event.ID, decayStrategy.Key()),
			compute: func(ctx context.Context, db bun.IDB) (pointsdomain.Deltas, error) {
				locked, err := s.repo.LockPositiveMemberships(ctx, db, event.SeasonID)
				if err != nil {
					return nil, err
				}
				balances := make([]pointsdomain.MembershipBalance, 0, len(locked))
				for _, m := range locked {
					balances = append(balances, pointsdomain.MembershipBalance{MembershipID: m.ID, Points: m.Points})
				}
				return decayStrategy.Calculate(event, balances), nil
			},
		})
	})
	if err != nil {
		// Scoring stays committed; redelivering the event applies decay only.
		return results.OperationResult[*CompletionResult, error]{}, fmt.Errorf("decay phase: %w", err)
	}
	if decay.IsFailure() {
		return results.FailureResult[*CompletionResult, error](*decay.Failure), nil
	}
	out.Decay = *decay.Success

	return results.SuccessResult[*CompletionResult, error](out), nil
}

type phasePlan struct {
	phase   pointsdomain.Phase
	kind    pointsdomain.LedgerKind
	key     string
	reason  string
	compute func(ctx context.Context, db bun.IDB) (pointsdomain.Deltas, error)
}

// runPhaseLogic applies one phase and records its run row in the same transaction.
func (s *PointsService) runPhaseLogic(ctx context.Context, db bun.IDB, event pointsdomain.EventSnapshot, plan phasePlan) (results.OperationResult[*PhaseOutcome, error], error) {
	outcome := &PhaseOutcome{Phase: plan.phase, StrategyKey: plan.key, Reason: plan.reason}
	hash := pointsdomain.ComputeRunHash(event, plan.phase, plan.key)

	run, err := s.repo.GetEventRun(ctx, db, event.ID, string(plan.phase))
	switch {
	case err == nil:
		if run.ProcessingHash == hash {
			s.logger.InfoContext(ctx, "Event phase already applied; skipping",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("event_id", event.ID),
				attr.String("phase", string(plan.phase)),
			)
			outcome.AlreadyApplied = true
			return results.SuccessResult[*PhaseOutcome, error](outcome), nil
		}
		return results.FailureResult[*PhaseOutcome, error](fmt.Errorf("%w: event %d phase %s", ErrResultsChanged, event.ID, plan.phase)), nil
	case !errors.Is(err, pointsdb.ErrNotFound):
		return results.OperationResult[*PhaseOutcome, error]{}, fmt.Errorf("failed to load event run: %w", err)
	}

	deltas, err := plan.compute(ctx, db)
	if err != nil {
		return results.OperationResult[*PhaseOutcome, error]{}, fmt.Errorf("failed to compute %s deltas: %w", plan.phase, err)
	}

	s.logger.InfoContext(ctx, "Calculated event deltas",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("event_id", event.ID),
		attr.String("phase", string(plan.phase)),
		attr.String("strategy", plan.key),
		attr.Int("deltas", len(deltas)),
	)

	eventID := event.ID
	applied, err := s.applyDeltasLogic(ctx, db, ApplyRequest{
		SeasonID: event.SeasonID,
		EventID:  &eventID,
		Kind:     plan.kind,
		Deltas:   deltas,
		Reason:   plan.reason,
	})
	if err != nil {
		return results.OperationResult[*PhaseOutcome, error]{}, err
	}
	if applied.IsFailure() {
		return results.FailureResult[*PhaseOutcome, error](*applied.Failure), nil
	}
	outcome.Result = *applied.Success

	if err := s.repo.InsertEventRun(ctx, db, &pointsdb.EventRun{
		EventID:        event.ID,
		Phase:          string(plan.phase),
		StrategyKey:    plan.key,
		ProcessingHash: hash,
		Entries:        len(outcome.Result.Applied),
	}); err != nil {
		return results.OperationResult[*PhaseOutcome, error]{}, fmt.Errorf("failed to record event run: %w", err)
	}

	return results.SuccessResult[*PhaseOutcome, error](outcome), nil
}
