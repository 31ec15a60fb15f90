package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/poker-points/app/db/bundb"
	"github.com/Black-And-White-Club/poker-points/app/eventbus"
	"github.com/Black-And-White-Club/poker-points/app/modules/points"
	"github.com/Black-And-White-Club/poker-points/app/observability"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 15 * time.Second

// App wires the points module to its database, bus and HTTP surfaces.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPRouter    chi.Router
	PointsModule  *points.Module

	httpServer    *http.Server
	metricsServer *http.Server
	routerCancel  context.CancelFunc
	wg            sync.WaitGroup
}

// Initialize builds every dependency. On error, already opened resources
// are released.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) (err error) {
	app.Config = cfg

	app.Observability, err = observability.Init(ctx, observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		Environment:    cfg.Observability.Environment,
		LogLevel:       cfg.Observability.LogLevel,
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		SampleRate:     cfg.Observability.SampleRate,
		MetricsAddress: cfg.Observability.MetricsAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := app.Observability.Provider.Logger

	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	app.DB, err = bundb.Open(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err = bundb.Migrate(ctx, app.DB, logger); err != nil {
		return err
	}

	app.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}

	app.Router, err = message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create message router: %w", err)
	}

	app.HTTPRouter = newHTTPRouter(app)

	var routerCtx context.Context
	routerCtx, app.routerCancel = context.WithCancel(ctx)

	app.PointsModule, err = points.NewPointsModule(
		ctx, cfg, app.Observability, app.DB, app.EventBus, app.Router, routerCtx, app.HTTPRouter,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize points module: %w", err)
	}

	app.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if addr := cfg.Observability.MetricsAddress; addr != "" {
		mux := chi.NewRouter()
		mux.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry.Prometheus, promhttp.HandlerOpts{}))
		app.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	}

	logger.InfoContext(ctx, "Application initialized",
		"http_addr", cfg.HTTP.Addr,
		"in_process_bus", cfg.NATS.URL == "",
	)
	return nil
}

func newHTTPRouter(app *App) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := app.DB.PingContext(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if app.Config.Observability.MetricsAddress == "" {
		r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry.Prometheus, promhttp.HandlerOpts{}))
	}
	return r
}

// Run starts the message router and HTTP servers and blocks until ctx is
// cancelled or a server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Provider.Logger
	errCh := make(chan error, 3)

	app.wg.Add(1)
	go app.PointsModule.Run(ctx, &app.wg)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router: %w", err)
		}
	}()

	go func() {
		logger.InfoContext(ctx, "HTTP server listening", "addr", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if app.metricsServer != nil {
		go func() {
			logger.InfoContext(ctx, "Metrics server listening", "addr", app.metricsServer.Addr)
			if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the servers, the module, the bus and the database in that order.
func (app *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if app.httpServer != nil {
		errs = append(errs, app.httpServer.Shutdown(ctx))
	}
	if app.metricsServer != nil {
		errs = append(errs, app.metricsServer.Shutdown(ctx))
	}
	if app.routerCancel != nil {
		app.routerCancel()
	}
	if app.PointsModule != nil {
		errs = append(errs, app.PointsModule.Close())
		app.wg.Wait()
	} else if app.Router != nil {
		errs = append(errs, app.Router.Close())
	}
	if app.EventBus != nil {
		errs = append(errs, app.EventBus.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	errs = append(errs, app.Observability.Shutdown(ctx))

	if app.Observability.Provider != nil {
		app.Observability.Provider.Logger.Info("Application stopped")
	}
	return errors.Join(errs...)
}
