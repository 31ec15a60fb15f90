package pointsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "PointsService"

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	DecayStrategy       string
	LeaderboardPageSize int
	ArchivePageSize     int
	Now                 func() time.Time
}

// PointsService implements the Service interface.
type PointsService struct {
	repo    pointsdb.Repository
	scoring *pointsdomain.Registry[pointsdomain.ScoringStrategy]
	decay   *pointsdomain.Registry[pointsdomain.DecayStrategy]
	logger  *slog.Logger
	metrics pointsmetrics.PointsMetrics
	tracer  trace.Tracer
	db      *bun.DB
	opts    Options
	palette ChartPalette
}

// NewPointsService creates a new PointsService.
func NewPointsService(
	repo pointsdb.Repository,
	scoring *pointsdomain.Registry[pointsdomain.ScoringStrategy],
	decay *pointsdomain.Registry[pointsdomain.DecayStrategy],
	logger *slog.Logger,
	metrics pointsmetrics.PointsMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *PointsService {
	if logger == nil {
		logger = slog.Default()
	}
	if scoring == nil {
		scoring = pointsdomain.NewScoringRegistry()
	}
	if decay == nil {
		decay = pointsdomain.NewDecayRegistry()
	}
	if opts.DecayStrategy == "" {
		opts.DecayStrategy = decay.DefaultKey()
	}
	if opts.LeaderboardPageSize <= 0 {
		opts.LeaderboardPageSize = DefaultLeaderboardPageSize
	}
	if opts.ArchivePageSize <= 0 {
		opts.ArchivePageSize = DefaultArchivePageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &PointsService{
		repo:    repo,
		scoring: scoring,
		decay:   decay,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		opts:    opts,
		palette: DefaultChartPalette,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *PointsService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
// Returning an error from fn rolls back everything fn wrote.
func runInTx[S any, F any](
	s *PointsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// unwrap converts an operation result to the (value, error) shape exposed by Service.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
