//go:build integration

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/Black-And-White-Club/poker-points/app/db/bundb"
	"github.com/Black-And-White-Club/poker-points/app/eventbus"
	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/Black-And-White-Club/poker-points/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds the containers and connections shared by a test package.
type TestEnvironment struct {
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	NatsURL       string
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres and NATS and migrates the schema.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	env := &TestEnvironment{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Terminate(ctx)
		return nil, err
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		env.Terminate(ctx)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	env.DB = bundb.NewDB(sqldb)

	if err := bundb.Migrate(ctx, env.DB, env.Logger); err != nil {
		env.Terminate(ctx)
		return nil, err
	}
	return env, nil
}

// Reset empties every points table.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	_, err := env.DB.ExecContext(ctx, `
		TRUNCATE points_ledger, points_event_runs, points_season_memberships, points_seasons
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("failed to truncate points tables: %w", err)
	}
	return nil
}

// NewService builds a points service backed by the environment's database.
func (env *TestEnvironment) NewService(opts pointsservice.Options) *pointsservice.PointsService {
	return pointsservice.NewPointsService(
		pointsdb.NewRepository(env.DB),
		nil,
		nil,
		env.Logger,
		pointsmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("integration"),
		env.DB,
		opts,
	)
}

// NewEventBus connects a JetStream bus to the environment's NATS server.
func (env *TestEnvironment) NewEventBus(ctx context.Context, queueGroup string) (eventbus.EventBus, error) {
	return eventbus.NewEventBus(ctx, eventbus.Config{URL: env.NatsURL, QueueGroup: queueGroup}, env.Logger)
}

// Terminate closes connections and stops containers.
func (env *TestEnvironment) Terminate(ctx context.Context) {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
}
