package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers audit report routes with the Chi router.
// Every route runs behind authentication, the role guard and the per-user
// rate limit, in that order.
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware, roleMiddleware, rateLimit func(next http.Handler) http.Handler) {
	r.Route("/reports/audit", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(roleMiddleware)
		r.Use(rateLimit)

		// GET /api/v1/reports/audit/types - Report kinds and their columns
		r.Get("/types", handler.Types)

		// GET /api/v1/reports/audit - Generate a report from query parameters
		r.Get("/", handler.Get)

		// POST /api/v1/reports/audit - Generate, export or archive a report
		r.Post("/", handler.Post)
	})
}
