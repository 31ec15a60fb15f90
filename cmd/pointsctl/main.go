// Command pointsctl administers seasons and balances against the points database.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/poker-points/app/db/bundb"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/observability"
	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/Black-And-White-Club/poker-points/config"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

func main() {
	_ = godotenv.Load()

	app := newApp(func(c *cli.Context) (pointsservice.Service, func() error, error) {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := observability.NewLogger(observability.Config{
			ServiceName: "pointsctl",
			Environment: "development",
			LogLevel:    "warn",
			Output:      os.Stderr,
		})
		if err != nil {
			return nil, nil, err
		}
		db, err := bundb.Open(c.Context, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		svc := pointsservice.NewPointsService(
			pointsdb.NewRepository(db),
			nil,
			nil,
			logger,
			pointsmetrics.NewNoop(),
			noop.NewTracerProvider().Tracer("pointsctl"),
			db,
			pointsservice.Options{
				DecayStrategy:       cfg.Points.DefaultDecayStrategy,
				LeaderboardPageSize: cfg.Points.LeaderboardPageSize,
				ArchivePageSize:     cfg.Points.ArchivePageSize,
			},
		)
		return svc, db.Close, nil
	}, time.Now)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("pointsctl failed", "error", err)
		log.SetFlags(0)
		log.Fatal(err)
	}
}
