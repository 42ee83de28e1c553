package reports

import "github.com/go-chi/chi/v5"

// MountRoutes registers reporting endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/daily", h.daily)
	r.Get("/reports/range", h.rangeReport)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/reports/export.csv", h.exportCSV)
	})
}
