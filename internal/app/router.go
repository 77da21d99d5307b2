package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hcp-erp/hcp-erp/internal/auth"
	"github.com/hcp-erp/hcp-erp/internal/billing"
	"github.com/hcp-erp/hcp-erp/internal/catalog"
	"github.com/hcp-erp/hcp-erp/internal/collections"
	"github.com/hcp-erp/hcp-erp/internal/crm"
	"github.com/hcp-erp/hcp-erp/internal/dispatch"
	"github.com/hcp-erp/hcp-erp/internal/observability"
	"github.com/hcp-erp/hcp-erp/internal/orders"
	"github.com/hcp-erp/hcp-erp/internal/platform/httpx"
	"github.com/hcp-erp/hcp-erp/internal/rbac"
	"github.com/hcp-erp/hcp-erp/internal/reports"
	"github.com/hcp-erp/hcp-erp/internal/shared"
	"github.com/hcp-erp/hcp-erp/internal/users"
	"github.com/hcp-erp/hcp-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler        *auth.Handler
	MenuHandler        *rbac.Handler
	OrdersHandler      *orders.Handler
	CatalogHandler     *catalog.Handler
	BillingHandler     *billing.Handler
	DispatchHandler    *dispatch.Handler
	CRMHandler         *crm.Handler
	CollectionsHandler *collections.Handler
	ReportsHandler     *reports.Handler
	UsersHandler       *users.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with HCP defaults. Module subtrees
// are gated by the rbac menu table so the /menu endpoint and the actual
// mounts can never disagree.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		payload := map[string]any{
			"service": "hcp-erp",
			"env":     params.Config.AppEnv,
		}
		if sess != nil && sess.User() != "" {
			payload["user"] = sess.User()
			payload["role"] = sess.Role()
		}
		httpx.JSON(w, http.StatusOK, payload)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	params.MenuHandler.MountRoutes(r)

	gate := params.RBACMiddleware.RequireSection

	r.Route("/orders", func(r chi.Router) {
		r.Use(gate("orders"))
		params.OrdersHandler.MountRoutes(r)
	})
	r.Route("/products", func(r chi.Router) {
		r.Use(gate("products"))
		params.CatalogHandler.MountRoutes(r)
	})
	r.Route("/billing", func(r chi.Router) {
		r.Use(gate("billing"))
		params.BillingHandler.MountRoutes(r)
	})
	r.Route("/delivery", func(r chi.Router) {
		r.Use(gate("delivery"))
		params.DispatchHandler.MountRoutes(r)
	})
	r.Route("/crm", func(r chi.Router) {
		r.Use(gate("crm"))
		params.CRMHandler.MountRoutes(r)
	})
	r.Route("/collections", func(r chi.Router) {
		r.Use(gate("collections"))
		params.CollectionsHandler.MountRoutes(r)
	})
	r.Route("/reports", func(r chi.Router) {
		r.Use(gate("reports"))
		params.ReportsHandler.MountRoutes(r)
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(gate("users"))
		params.UsersHandler.MountRoutes(r)
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Use(params.RBACMiddleware.RequireAuthenticated)
		params.JobHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
