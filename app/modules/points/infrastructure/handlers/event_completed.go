package pointshandlers

import (
	"context"
	"errors"
	"strconv"

	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/Black-And-White-Club/poker-points/app/shared/handlerwrapper"
)

// HandleEventCompleted scores a finished event. Business rejections are
// published as failures; infrastructure errors are returned so the message is retried.
func (h *PointsHandlers) HandleEventCompleted(ctx context.Context, payload *pointsevents.EventCompletedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PointsHandlers.HandleEventCompleted")
	defer span.End()

	if payload == nil {
		return nil, errors.New("payload is nil")
	}

	metadata := map[string]string{"event_id": strconv.FormatInt(payload.EventID, 10)}

	result, err := h.service.CompleteEvent(ctx, toSnapshot(payload))
	if err != nil {
		if !pointsservice.IsDomainError(err) {
			return nil, err
		}
		h.logger.WarnContext(ctx, "Event scoring rejected",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("event_id", payload.EventID),
			attr.Error(err),
		)
		return []handlerwrapper.Result{{
			Topic:    pointsevents.EventScoringFailedV1,
			Payload:  &pointsevents.EventScoringFailedPayloadV1{EventID: payload.EventID, Reason: err.Error()},
			Metadata: metadata,
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:    pointsevents.EventScoredV1,
		Payload:  toScoredPayload(result),
		Metadata: metadata,
	}}, nil
}

func toSnapshot(p *pointsevents.EventCompletedPayloadV1) pointsdomain.EventSnapshot {
	event := pointsdomain.EventSnapshot{
		ID:                p.EventID,
		SeasonID:          p.SeasonID,
		ScoringStrategy:   p.ScoringStrategy,
		TotalParticipants: p.TotalParticipants,
		Participations:    make([]pointsdomain.Participation, 0, len(p.Participations)),
	}
	for _, part := range p.Participations {
		event.Participations = append(event.Participations, pointsdomain.Participation{
			MembershipID: part.MembershipID,
			Rank:         part.Rank,
			Eliminations: part.Eliminations,
		})
	}
	return event
}

func toScoredPayload(r *pointsservice.CompletionResult) *pointsevents.EventScoredPayloadV1 {
	return &pointsevents.EventScoredPayloadV1{
		EventID:    r.EventID,
		SeasonID:   r.SeasonID,
		Skipped:    r.Skipped,
		SkipReason: r.SkipReason,
		Scoring:    toPhasePayload(r.Scoring),
		Decay:      toPhasePayload(r.Decay),
	}
}

func toPhasePayload(p *pointsservice.PhaseOutcome) *pointsevents.PhaseV1 {
	if p == nil {
		return nil
	}
	out := &pointsevents.PhaseV1{Strategy: p.StrategyKey, Reason: p.Reason, AlreadyApplied: p.AlreadyApplied}
	if p.Result != nil {
		out.Applied = toDeltaPayloads(p.Result.Applied)
		out.Skipped = p.Result.Skipped
	}
	return out
}

func toDeltaPayloads(applied []pointsservice.AppliedDelta) []pointsevents.DeltaV1 {
	out := make([]pointsevents.DeltaV1, 0, len(applied))
	for _, a := range applied {
		out = append(out, pointsevents.DeltaV1{MembershipID: a.MembershipID, Delta: a.Delta, Balance: a.Balance})
	}
	return out
}
