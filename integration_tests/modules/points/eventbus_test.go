//go:build integration

package points_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	"github.com/Black-And-White-Club/poker-points/app/modules/points"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	"github.com/Black-And-White-Club/poker-points/app/observability"
	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/Black-And-White-Club/poker-points/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/Black-And-White-Club/poker-points/integration_tests/testutils"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestEventCompleted_JetStreamRoundTrip(t *testing.T) {
	resetDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	t.Setenv("APP_ENV", "test")

	svc := testEnv.NewService(pointsservice.Options{})
	season, ids, err := testutils.NewTestDataGenerator(11).Season(ctx, svc, 4)
	require.NoError(t, err)

	bus, err := testEnv.NewEventBus(ctx, "points-it")
	require.NoError(t, err)
	defer bus.Close()

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(testEnv.Logger))
	require.NoError(t, err)

	obs := observability.Observability{
		Provider: &observability.Provider{Logger: testEnv.Logger},
		Registry: &observability.Registry{
			Tracer:        noop.NewTracerProvider().Tracer("integration"),
			PointsMetrics: pointsmetrics.NewNoop(),
		},
	}
	cfg := &config.Config{}
	module, err := points.NewPointsModule(ctx, cfg, obs, testEnv.DB, bus, router, ctx, nil)
	require.NoError(t, err)
	defer module.Close()

	go func() { _ = router.Run(ctx) }()
	select {
	case <-router.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	observer, err := testEnv.NewEventBus(ctx, "points-it-observer")
	require.NoError(t, err)
	defer observer.Close()
	scored, err := observer.Subscribe(ctx, pointsevents.EventScoredV1)
	require.NoError(t, err)

	payload := pointsevents.EventCompletedPayloadV1{
		EventID:           901,
		SeasonID:          season.ID,
		ScoringStrategy:   pointsdomain.BountyKey,
		TotalParticipants: len(ids),
		CompletedAt:       time.Now().UTC(),
	}
	for i, id := range ids {
		id := id
		payload.Participations = append(payload.Participations, pointsevents.ParticipationV1{
			MembershipID: &id,
			Eliminations: len(ids) - 1 - i,
		})
	}
	msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{
		Topic:   pointsevents.EventCompletedV1,
		Payload: payload,
	}, "corr-round-trip")
	require.NoError(t, err)
	require.NoError(t, bus.Publish(pointsevents.EventCompletedV1, msg))

	for {
		select {
		case got := <-scored:
			got.Ack()
			var out pointsevents.EventScoredPayloadV1
			require.NoError(t, json.Unmarshal(got.Payload, &out))
			if out.EventID != payload.EventID {
				continue
			}
			assert.Equal(t, "corr-round-trip", middleware.MessageCorrelationID(got))
			require.NotNil(t, out.Scoring)
			assert.Equal(t, pointsdomain.BountyKey, out.Scoring.Strategy)
			assert.Len(t, out.Scoring.Applied, len(ids))

			// Three knockouts at three points each, less the buy-in.
			assert.Equal(t, 6, balance(t, svc, ids[0]))
			return
		case <-ctx.Done():
			t.Fatal("timed out waiting for scored event")
		}
	}
}
