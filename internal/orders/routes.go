package orders

import "github.com/go-chi/chi/v5"

// MountRoutes registers order endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.create)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}", h.update)
	r.Get("/orders/{id}/items", h.items)
	r.Post("/orders/{id}/items", h.addItems)
	r.Post("/orders/{id}/complete", h.complete)
	r.Post("/orders/{id}/cancel", h.cancel)
}
