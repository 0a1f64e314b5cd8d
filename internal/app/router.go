package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nayea-id/nayea/internal/auth"
	"github.com/nayea-id/nayea/internal/gate"
	"github.com/nayea-id/nayea/internal/guard"
	"github.com/nayea-id/nayea/internal/observability"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
	"github.com/nayea-id/nayea/internal/store"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Guard              guard.Guard
	AuthHandler        *auth.Handler
	PermissionsHandler *gate.PermissionsHandler
	StoreHandler       *store.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Nayea defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Guard:   params.Guard,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The denial view the storefront renders after a role-restricted
	// redirect. Content mirrors the fine-grained denial payload: role only,
	// never matrix contents.
	r.Get("/unauthorized", func(w http.ResponseWriter, r *http.Request) {
		role := ""
		if principal := session.PrincipalFromContext(r.Context()); principal != nil {
			role = principal.Role.String()
		}
		httpx.JSON(w, http.StatusForbidden, httpx.Envelope{
			Success: false,
			Message: "You do not have access to this area",
			Code:    httpx.CodePermissionDenied,
			Data:    map[string]string{"role": role},
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/api", func(r chi.Router) {
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		params.StoreHandler.MountRoutes(r)
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
