package pointsmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "club")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "ApplyDeltas", "PointsService")
	m.RecordOperationSuccess(ctx, "ApplyDeltas", "PointsService")
	m.RecordOperationDuration(ctx, "ApplyDeltas", "PointsService", 10*time.Millisecond)
	m.RecordLedgerEntries(ctx, "scoring", 4)
	m.RecordLedgerEntries(ctx, "scoring", 2)

	pm := m.(*prometheusMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.attempts.WithLabelValues("ApplyDeltas", "PointsService")))
	assert.Equal(t, 6.0, testutil.ToFloat64(pm.ledger.WithLabelValues("scoring")))

	_, err = NewPrometheus(reg, "club")
	assert.Error(t, err, "registering twice on one registry should fail")
}

func TestNoop(t *testing.T) {
	m := NewNoop()
	m.RecordEventCompletion(context.Background(), "scored")
}
