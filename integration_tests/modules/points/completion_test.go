//go:build integration

package points_test

import (
	"context"
	"testing"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	pointsdomain "github.com/Black-And-White-Club/poker-points/app/modules/points/domain"
	"github.com/Black-And-White-Club/poker-points/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteEvent_ScoresDecaysAndIgnoresRedelivery(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	svc := testEnv.NewService(pointsservice.Options{})
	gen := testutils.NewTestDataGenerator(2026)

	season, ids, err := gen.Season(ctx, svc, 10)
	require.NoError(t, err)

	_, err = svc.AdjustPoints(ctx, pointsservice.AdjustmentRequest{MembershipID: ids[0], Delta: 200, Reason: "carry over"})
	require.NoError(t, err)

	event := testutils.RankedEvent(77, season.ID, pointsdomain.BuyInDistributionKey, ids)
	res, err := svc.CompleteEvent(ctx, event)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.NotNil(t, res.Scoring)
	require.NotNil(t, res.Decay)
	assert.False(t, res.Scoring.AlreadyApplied)
	assert.Len(t, res.Scoring.Result.Applied, 10)
	assert.Len(t, res.Decay.Result.Applied, 2)

	want := map[int64]int{ids[0]: 229, ids[1]: 10}
	for _, id := range ids[2:] {
		want[id] = -5
	}
	for id, points := range want {
		assert.Equal(t, points, balance(t, svc, id), "membership %d", id)
	}

	// Redelivery in a different order is recognised and changes nothing.
	reordered := event
	reordered.Participations = append([]pointsdomain.Participation(nil), event.Participations...)
	for i, j := 0, len(reordered.Participations)-1; i < j; i, j = i+1, j-1 {
		reordered.Participations[i], reordered.Participations[j] = reordered.Participations[j], reordered.Participations[i]
	}
	again, err := svc.CompleteEvent(ctx, reordered)
	require.NoError(t, err)
	assert.True(t, again.Scoring.AlreadyApplied)
	assert.True(t, again.Decay.AlreadyApplied)
	for id, points := range want {
		assert.Equal(t, points, balance(t, svc, id), "membership %d after redelivery", id)
	}

	// Different results for the same event are refused.
	changed := testutils.RankedEvent(77, season.ID, pointsdomain.BuyInDistributionKey, append([]int64{ids[1], ids[0]}, ids[2:]...))
	_, err = svc.CompleteEvent(ctx, changed)
	require.ErrorIs(t, err, pointsservice.ErrResultsChanged)

	board, err := svc.GetLeaderboard(ctx, pointsservice.LeaderboardQuery{SeasonID: season.ID})
	require.NoError(t, err)
	require.NotEmpty(t, board.Rows)
	assert.Equal(t, ids[0], board.Rows[0].MembershipID)
	assert.Equal(t, 10, board.Page.TotalItems)
}

func TestCompleteEvent_SkipsWithoutSeason(t *testing.T) {
	resetDB(t)
	svc := testEnv.NewService(pointsservice.Options{})

	res, err := svc.CompleteEvent(context.Background(), pointsdomain.EventSnapshot{
		ID:                5,
		ScoringStrategy:   pointsdomain.BountyKey,
		TotalParticipants: 3,
	})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
}
