package sales

import "github.com/go-chi/chi/v5"

// MountRoutes registers sale endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.list)
	r.Get("/sales/{id}", h.get)
	r.Delete("/sales/{id}", h.remove)
}
