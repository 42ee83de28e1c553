package shifts

import "github.com/go-chi/chi/v5"

// MountRoutes registers shift endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/shifts", h.list)
	r.Post("/shifts", h.openShift)
	r.Get("/shifts/open", h.open)
	r.Get("/shifts/{id}", h.get)
	r.Post("/shifts/{id}/close", h.closeShift)
	r.Get("/shifts/{id}/report", h.report)
}
