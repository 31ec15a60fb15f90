package points

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/poker-points/app/eventbus"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointshandlers "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/handlers"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	pointsrouter "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/router"
	"github.com/Black-And-White-Club/poker-points/app/observability"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module represents the points module.
type Module struct {
	PointsService pointsservice.Service
	PointsRouter  *pointsrouter.PointsRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewPointsModule creates and initializes a new points module. A nil
// httpRouter skips HTTP route registration.
func NewPointsModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	routerCtx context.Context,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "points.NewPointsModule initializing")

	// 1. Initialize Repository
	repo := pointsdb.NewRepository(db)

	// 2. Initialize Service with the default strategy registries
	service := pointsservice.NewPointsService(
		repo,
		nil,
		nil,
		logger,
		obs.Registry.PointsMetrics,
		tracer,
		db,
		pointsservice.Options{
			DecayStrategy:       cfg.Points.DefaultDecayStrategy,
			LeaderboardPageSize: cfg.Points.LeaderboardPageSize,
			ArchivePageSize:     cfg.Points.ArchivePageSize,
		},
	)

	// 3. Initialize Handlers
	handlers := pointshandlers.NewPointsHandlers(service, logger, tracer)

	// 4. Initialize Router
	pointsRouter := pointsrouter.NewPointsRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.Registry.Prometheus,
	)

	// 5. Configure the router with handlers
	if err := pointsRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure points router: %w", err)
	}

	// 6. Mount the HTTP API
	if httpRouter != nil {
		var limiter *pointshandlers.IPRateLimiter
		if cfg.HTTP.RateLimit > 0 {
			limiter = pointshandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		}
		pointshandlers.RegisterRoutes(httpRouter, handlers, limiter)
	}

	return &Module{
		PointsService: service,
		PointsRouter:  pointsRouter,
		observability: obs,
	}, nil
}

// Run starts the points module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting points module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Points module goroutine stopped")
}

// Close shuts down the points module.
func (m *Module) Close() error {
	logger := m.observability.Provider.Logger
	logger.Info("Stopping points module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.PointsRouter != nil {
		if err := m.PointsRouter.Close(); err != nil {
			logger.Error("Error closing PointsRouter from module", "error", err)
			return fmt.Errorf("error closing PointsRouter: %w", err)
		}
	}

	logger.Info("Points module stopped")
	return nil
}
