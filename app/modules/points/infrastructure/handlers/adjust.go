package pointshandlers

import (
	"context"
	"errors"
	"strconv"

	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/Black-And-White-Club/poker-points/app/shared/handlerwrapper"
)

// HandleAdjustRequested applies a manual correction requested over the bus.
func (h *PointsHandlers) HandleAdjustRequested(ctx context.Context, payload *pointsevents.AdjustRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PointsHandlers.HandleAdjustRequested")
	defer span.End()

	if payload == nil {
		return nil, errors.New("payload is nil")
	}

	metadata := map[string]string{"membership_id": strconv.FormatInt(payload.MembershipID, 10)}

	requestID := payload.RequestID
	if requestID == "" {
		requestID = handlerwrapper.MessageIDFromContext(ctx)
	}

	h.logger.InfoContext(ctx, "Adjustment requested",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("membership_id", payload.MembershipID),
		attr.Int("delta", payload.Delta),
		attr.String("requested_by", payload.RequestedBy),
		attr.String("request_id", requestID),
	)

	result, err := h.service.AdjustPoints(ctx, pointsservice.AdjustmentRequest{
		MembershipID: payload.MembershipID,
		Delta:        payload.Delta,
		Reason:       payload.Reason,
		RequestID:    requestID,
	})
	if err != nil {
		if !pointsservice.IsDomainError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:    pointsevents.AdjustFailedV1,
			Payload:  &pointsevents.AdjustFailedPayloadV1{MembershipID: payload.MembershipID, Reason: err.Error()},
			Metadata: metadata,
		}}, nil
	}

	delta, balance := payload.Delta, 0
	if len(result.Applied) > 0 {
		delta, balance = result.Applied[0].Delta, result.Applied[0].Balance
	}
	return []handlerwrapper.Result{{
		Topic: pointsevents.AdjustedV1,
		Payload: &pointsevents.AdjustedPayloadV1{
			MembershipID:   payload.MembershipID,
			Delta:          delta,
			Balance:        balance,
			Reason:         payload.Reason,
			RequestID:      requestID,
			AlreadyApplied: result.AlreadyApplied,
		},
		Metadata: metadata,
	}}, nil
}
