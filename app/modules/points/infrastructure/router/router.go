package pointsrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/poker-points/app/eventbus"
	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	pointshandlers "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/handlers"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/Black-And-White-Club/poker-points/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// PointsRouter registers the points module's message handlers.
type PointsRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	publisher      eventbus.EventBus
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewPointsRouter creates a new PointsRouter.
func NewPointsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *PointsRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}
	return &PointsRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsBuilder != nil,
	}
}

// Configure adds middleware and registers handlers on the router.
func (r *PointsRouter) Configure(routerCtx context.Context, handlers pointshandlers.Handlers) error {
	if r.metricsEnabled {
		r.logger.Info("Adding Prometheus router metrics middleware")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	} else {
		r.logger.Info("Skipping Prometheus router metrics middleware - either in test environment or metrics not configured")
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
	)

	if err := r.RegisterHandlers(routerCtx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

// RegisterHandlers wires inbound topics to handler methods.
func (r *PointsRouter) RegisterHandlers(ctx context.Context, handlers pointshandlers.Handlers) error {
	registerHandler(ctx, r, pointsevents.EventCompletedV1, handlers.HandleEventCompleted)
	registerHandler(ctx, r, pointsevents.AdjustRequestedV1, handlers.HandleAdjustRequested)

	r.logger.Info("Points module handlers registered",
		attr.String("event_completed_subject", pointsevents.EventCompletedV1),
		attr.String("adjust_requested_subject", pointsevents.AdjustRequestedV1),
	)
	return nil
}

// registerHandler adds a typed handler. Output messages carry their topic in
// metadata and are published here rather than by the router, since one
// handler can emit different topics.
func registerHandler[T any](
	ctx context.Context,
	r *PointsRouter,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "points." + topic
	wrapped := handlerwrapper.WrapTransformingTyped(handlerName, r.logger, r.tracer, handler)

	r.Router.AddHandler(
		handlerName,
		topic,
		r.subscriber,
		"",
		nil,
		func(msg *message.Message) ([]*message.Message, error) {
			messages, err := wrapped(msg)
			if err != nil {
				r.logger.ErrorContext(ctx, "Error processing message", attr.String("message_id", msg.UUID), attr.Error(err))
				return nil, err
			}
			for _, m := range messages {
				publishTopic := m.Metadata.Get(handlerwrapper.TopicMetadataKey)
				if publishTopic == "" {
					r.logger.Error("router failed to resolve publish topic - MESSAGE DROPPED",
						attr.String("handler", handlerName),
						attr.String("msg_uuid", m.UUID),
						attr.String("correlation_id", middleware.MessageCorrelationID(m)),
					)
					continue
				}

				r.logger.InfoContext(ctx, "publishing message",
					attr.String("topic", publishTopic),
					attr.String("handler", handlerName),
					attr.String("correlation_id", middleware.MessageCorrelationID(m)),
				)

				if err := r.publisher.Publish(publishTopic, m); err != nil {
					return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
				}
			}
			return nil, nil
		},
	)
}

// Close shuts down the router.
func (r *PointsRouter) Close() error {
	return r.Router.Close()
}
