package pointshandlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the points API under /api/points.
func RegisterRoutes(r chi.Router, h Handlers, limiter *IPRateLimiter) {
	r.Route("/api/points", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}

		r.Get("/leaderboard", h.HandleHTTPLeaderboard)
		r.Get("/leaderboard/export.xlsx", h.HandleHTTPLeaderboardExport)

		r.Get("/seasons/active", h.HandleHTTPActiveSeason)
		r.Get("/seasons/archive", h.HandleHTTPSeasonArchive)

		r.Route("/memberships/{membershipID}", func(r chi.Router) {
			r.Get("/ledger", h.HandleHTTPLedger)
			r.Get("/chart.png", h.HandleHTTPChart)
			r.Get("/reconcile", h.HandleHTTPReconcile)
		})

		r.Post("/events/{eventID}/results", h.HandleHTTPImportResults)
	})
}
