package catalog

import "github.com/go-chi/chi/v5"

// MountRoutes registers catalog endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/catalog/products", h.listProducts)
	r.Get("/catalog/products/{id}", h.getProduct)
	r.Post("/catalog/products", h.createProduct)
	r.Put("/catalog/products/{id}", h.updateProduct)
	r.Delete("/catalog/products/{id}", h.deleteProduct)

	r.Get("/catalog/categories", h.listCategories)
	r.Post("/catalog/categories", h.createCategory)
	r.Put("/catalog/categories/{id}", h.updateCategory)
}
