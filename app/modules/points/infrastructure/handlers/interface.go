package pointshandlers

import (
	"context"
	"net/http"

	pointsevents "github.com/Black-And-White-Club/poker-points/app/events/points"
	"github.com/Black-And-White-Club/poker-points/app/shared/handlerwrapper"
)

// Handlers defines the message and HTTP entry points of the points module.
type Handlers interface {
	HandleEventCompleted(ctx context.Context, payload *pointsevents.EventCompletedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAdjustRequested(ctx context.Context, payload *pointsevents.AdjustRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPLeaderboard(w http.ResponseWriter, r *http.Request)
	HandleHTTPLeaderboardExport(w http.ResponseWriter, r *http.Request)
	HandleHTTPActiveSeason(w http.ResponseWriter, r *http.Request)
	HandleHTTPSeasonArchive(w http.ResponseWriter, r *http.Request)
	HandleHTTPLedger(w http.ResponseWriter, r *http.Request)
	HandleHTTPChart(w http.ResponseWriter, r *http.Request)
	HandleHTTPReconcile(w http.ResponseWriter, r *http.Request)
	HandleHTTPImportResults(w http.ResponseWriter, r *http.Request)
}
