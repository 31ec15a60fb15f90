package pointshandlers

import (
	"log/slog"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	"go.opentelemetry.io/otel/trace"
)

// PointsHandlers implements the Handlers interface.
type PointsHandlers struct {
	service pointsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPointsHandlers creates a new PointsHandlers instance.
func NewPointsHandlers(
	service pointsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &PointsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

var _ Handlers = (*PointsHandlers)(nil)
