package cart

import "github.com/go-chi/chi/v5"

// MountRoutes registers cart endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.get)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items", h.setQuantity)
	r.Put("/cart/items/discount", h.setItemDiscount)
	r.Put("/cart/discount", h.setDiscount)
	r.Post("/cart/load-order", h.loadOrder)
	r.Post("/cart/checkout", h.checkout)
	r.Delete("/cart", h.clear)
}
