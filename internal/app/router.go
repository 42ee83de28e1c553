package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talinda-pos/talinda-pos/internal/auth"
	"github.com/talinda-pos/talinda-pos/internal/cart"
	"github.com/talinda-pos/talinda-pos/internal/catalog"
	"github.com/talinda-pos/talinda-pos/internal/orders"
	"github.com/talinda-pos/talinda-pos/internal/reports"
	"github.com/talinda-pos/talinda-pos/internal/sales"
	"github.com/talinda-pos/talinda-pos/internal/shared"
	"github.com/talinda-pos/talinda-pos/internal/shifts"
	"github.com/talinda-pos/talinda-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	OrderHandler   *orders.Handler
	ShiftHandler   *shifts.Handler
	CartHandler    *cart.Handler
	SaleHandler    *sales.Handler
	ReportHandler  *reports.Handler
	JobHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		params.CatalogHandler.MountRoutes(r)
		params.OrderHandler.MountRoutes(r)
		params.ShiftHandler.MountRoutes(r)
		params.CartHandler.MountRoutes(r)
		params.SaleHandler.MountRoutes(r)
		params.ReportHandler.MountRoutes(r)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
