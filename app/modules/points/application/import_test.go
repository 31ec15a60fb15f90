package pointsservice

import (
	"context"
	"log/slog"
	"testing"

	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

func buildSheet(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseResultsXLSX(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]any
		want    []ResultRow
		wantErr string
	}{
		{
			name: "standard headers",
			rows: [][]any{
				{"User_ID", "Rank", "Eliminations"},
				{"ace", 1, 3},
				{"king", 2, ""},
				{"", "", ""},
				{"queen", "", 1},
			},
			want: []ResultRow{
				{UserID: "ace", Rank: ptr(1), Eliminations: 3},
				{UserID: "king", Rank: ptr(2)},
				{UserID: "queen", Eliminations: 1},
			},
		},
		{
			name: "title row above alternate headers",
			rows: [][]any{
				{"Friday Night Hold'em"},
				{"Player", "Place", "KOs"},
				{"ace", 1, 2},
			},
			want: []ResultRow{{UserID: "ace", Rank: ptr(1), Eliminations: 2}},
		},
		{
			name:    "no user column",
			rows:    [][]any{{"Name", "Score"}, {"ace", 10}},
			wantErr: "no header row",
		},
		{
			name:    "bad rank",
			rows:    [][]any{{"user", "rank"}, {"ace", "first"}},
			wantErr: "invalid rank",
		},
		{
			name:    "negative eliminations",
			rows:    [][]any{{"user", "eliminations"}, {"ace", -1}},
			wantErr: "invalid eliminations",
		},
		{
			name:    "duplicate user",
			rows:    [][]any{{"user"}, {"ace"}, {"ace"}},
			wantErr: "already listed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResultsXLSX(buildSheet(t, tt.rows...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResultsXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseResultsXLSX([]byte("rank,user\n1,ace\n"))
	require.Error(t, err)
}

func TestImportEventResults(t *testing.T) {
	ledger := newMemoryLedger(
		pointsdb.SeasonMembership{ID: 1, SeasonID: testSeason, UserID: "ace"},
		pointsdb.SeasonMembership{ID: 2, SeasonID: testSeason, UserID: "king"},
	)
	repo := ledger.wire(NewFakeRepo())
	repo.GetActiveSeasonFunc = func(context.Context, bun.IDB) (*pointsdb.Season, error) {
		return &pointsdb.Season{ID: testSeason, IsActive: true}, nil
	}
	repo.FindMembershipsByUsersFunc = func(_ context.Context, _ bun.IDB, seasonID string, userIDs []string) ([]pointsdb.SeasonMembership, error) {
		assert.Equal(t, testSeason, seasonID)
		var out []pointsdb.SeasonMembership
		for _, u := range userIDs {
			for _, m := range ledger.memberships {
				if m.UserID == u {
					out = append(out, *m)
				}
			}
		}
		return out, nil
	}
	svc := newTestService(repo, Options{})

	sheet := buildSheet(t,
		[]any{"user", "rank", "eliminations"},
		[]any{"ace", 1, 2},
		[]any{"king", 2, 0},
		[]any{"guest", 3, 1},
	)

	got, err := svc.ImportEventResults(context.Background(), ImportResultsRequest{
		EventID:         100,
		ScoringStrategy: pointsdomain.BountyKey,
		Sheet:           sheet,
	})
	require.NoError(t, err)
	assert.Equal(t, testSeason, got.SeasonID)
	assert.Equal(t, pointsdomain.BountyKey, got.Scoring.StrategyKey)
	// The guest has no membership, so only two deltas land.
	assert.Len(t, got.Scoring.Result.Applied, 2)
	assert.Equal(t, 3, ledger.points(1))
	assert.Equal(t, -3, ledger.points(2))
}

func TestImportEventResults_Invalid(t *testing.T) {
	svc := newTestService(NewFakeRepo(), Options{})

	_, err := svc.ImportEventResults(context.Background(), ImportResultsRequest{Sheet: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.ImportEventResults(context.Background(), ImportResultsRequest{EventID: 1, Sheet: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

type completionMetrics struct {
	*pointsmetrics.NoOpMetrics
	outcomes []string
}

func (m *completionMetrics) RecordEventCompletion(_ context.Context, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func TestImportEventResults_RecordsCompletion(t *testing.T) {
	ledger := newMemoryLedger(pointsdb.SeasonMembership{ID: 1, SeasonID: testSeason, UserID: "ace"})
	repo := ledger.wire(NewFakeRepo())
	repo.GetActiveSeasonFunc = func(context.Context, bun.IDB) (*pointsdb.Season, error) {
		return &pointsdb.Season{ID: testSeason, IsActive: true}, nil
	}
	repo.FindMembershipsByUsersFunc = func(context.Context, bun.IDB, string, []string) ([]pointsdb.SeasonMembership, error) {
		return []pointsdb.SeasonMembership{*ledger.memberships[1]}, nil
	}
	metrics := &completionMetrics{NoOpMetrics: &pointsmetrics.NoOpMetrics{}}
	svc := NewPointsService(repo, nil, nil, slog.Default(), metrics, noop.NewTracerProvider().Tracer("test"), nil, Options{})

	sheet := buildSheet(t,
		[]any{"user", "rank"},
		[]any{"ace", 1},
		[]any{"guest", 2},
	)
	_, err := svc.ImportEventResults(context.Background(), ImportResultsRequest{
		EventID:         7,
		ScoringStrategy: pointsdomain.BuyInDistributionKey,
		Sheet:           sheet,
	})
	require.NoError(t, err)

	_, err = svc.ImportEventResults(context.Background(), ImportResultsRequest{EventID: 8, Sheet: []byte("x")})
	require.ErrorIs(t, err, ErrInvalidRequest)

	assert.Equal(t, []string{"scored", "failed"}, metrics.outcomes)
}
