package pointshandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	"github.com/Black-And-White-Club/poker-points/app/observability/attr"
	"github.com/go-chi/chi/v5"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// maxUploadBytes bounds an uploaded results sheet.
	maxUploadBytes = 5 << 20
)

func (h *PointsHandlers) HandleHTTPLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := optionalInt(r, "page")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.GetLeaderboard(ctx, pointsservice.LeaderboardQuery{
		SeasonID: r.URL.Query().Get("season"),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
	})
	if err != nil {
		h.writeServiceError(w, r, "Leaderboard request failed", err)
		return
	}
	writeJSON(w, resp)
}

func (h *PointsHandlers) HandleHTTPLeaderboardExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	season := r.URL.Query().Get("season")

	data, err := h.service.ExportLeaderboardXLSX(ctx, season)
	if err != nil {
		h.writeServiceError(w, r, "Leaderboard export failed", err)
		return
	}

	name := season
	if name == "" {
		name = "active"
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "leaderboard-"+name+".xlsx"))
	w.Write(data)
}

func (h *PointsHandlers) HandleHTTPActiveSeason(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetActiveSeason(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Active season request failed", err)
		return
	}
	writeJSON(w, resp)
}

func (h *PointsHandlers) HandleHTTPSeasonArchive(w http.ResponseWriter, r *http.Request) {
	page, err := optionalInt(r, "page")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if page == 0 {
		page = 1
	}

	resp, err := h.service.ListArchivedSeasons(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, "Season archive request failed", err)
		return
	}
	writeJSON(w, resp)
}

func (h *PointsHandlers) HandleHTTPLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipParam(w, r)
	if !ok {
		return
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.GetLedgerHistory(r.Context(), id, limit)
	if err != nil {
		h.writeServiceError(w, r, "Ledger request failed", err)
		return
	}
	writeJSON(w, map[string]any{"membership_id": id, "entries": resp})
}

func (h *PointsHandlers) HandleHTTPChart(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipParam(w, r)
	if !ok {
		return
	}

	png, err := h.service.RenderPointsHistoryChart(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "Chart request failed", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *PointsHandlers) HandleHTTPReconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := membershipParam(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Reconcile(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "Reconcile request failed", err)
		return
	}
	writeJSON(w, resp)
}

// HandleHTTPImportResults accepts a multipart upload with a "results" file
// and optional "season" and "strategy" fields.
func (h *PointsHandlers) HandleHTTPImportResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || eventID <= 0 {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("results")
	if err != nil {
		http.Error(w, "missing results file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sheet, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ImportEventResults(ctx, pointsservice.ImportResultsRequest{
		EventID:         eventID,
		SeasonID:        r.FormValue("season"),
		ScoringStrategy: r.FormValue("strategy"),
		Sheet:           sheet,
	})
	if err != nil {
		h.writeServiceError(w, r, "Results import failed", err)
		return
	}
	writeJSON(w, resp)
}

func (h *PointsHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), msg, attr.String("path", r.URL.Path), attr.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.logger.WarnContext(r.Context(), msg, attr.String("path", r.URL.Path), attr.Error(err))
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pointsservice.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, pointsservice.ErrNoActiveSeason),
		errors.Is(err, pointsservice.ErrSeasonNotFound),
		errors.Is(err, pointsservice.ErrMembershipNotFound):
		return http.StatusNotFound
	case errors.Is(err, pointsservice.ErrResultsChanged),
		errors.Is(err, pointsservice.ErrSeasonExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func membershipParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "membershipID"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid membership id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
