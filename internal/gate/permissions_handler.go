package gate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
)

// PermissionsHandler serves the permission view the storefront uses for
// conditional rendering: the caller's role plus per-resource predicates.
type PermissionsHandler struct {
	logger *slog.Logger
}

// NewPermissionsHandler builds a PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger) *PermissionsHandler {
	return &PermissionsHandler{logger: logger}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
}

type resourcePermissions struct {
	Resource  string   `json:"resource"`
	Actions   []string `json:"actions"`
	CanRead   bool     `json:"canRead"`
	CanCreate bool     `json:"canCreate"`
	CanUpdate bool     `json:"canUpdate"`
	CanDelete bool     `json:"canDelete"`
}

type permissionsPayload struct {
	Role          string                `json:"role"`
	Authenticated bool                  `json:"authenticated"`
	Resources     []resourcePermissions `json:"resources"`
}

// listPermissions answers for anonymous callers too: they receive an
// all-false payload rather than an error, which keeps signed-out rendering
// on the same code path in the storefront.
func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	principal := session.PrincipalFromContext(r.Context())

	payload := permissionsPayload{Resources: []resourcePermissions{}}
	var role authz.Role
	if principal != nil {
		payload.Authenticated = true
		payload.Role = principal.Role.String()
		role = principal.Role
	}

	resources := authz.Resources()
	if raw := r.URL.Query().Get("resource"); raw != "" {
		resource, ok := authz.ParseResource(raw)
		if !ok {
			// Unknown resource fails closed with an empty grant, same as
			// the engine itself.
			payload.Resources = append(payload.Resources, resourcePermissions{
				Resource: raw,
				Actions:  []string{},
			})
			httpx.OK(w, payload)
			return
		}
		resources = []authz.Resource{resource}
	}

	for _, resource := range resources {
		payload.Resources = append(payload.Resources, describe(resource, role, payload.Authenticated))
	}
	httpx.OK(w, payload)
}

func describe(resource authz.Resource, role authz.Role, authenticated bool) resourcePermissions {
	entry := resourcePermissions{
		Resource: resource.String(),
		Actions:  []string{},
	}
	if !authenticated {
		return entry
	}
	for _, action := range authz.AllowedActions(resource, role) {
		entry.Actions = append(entry.Actions, action.String())
	}
	entry.CanRead = authz.CanRead(resource, role)
	entry.CanCreate = authz.CanCreate(resource, role)
	entry.CanUpdate = authz.CanUpdate(resource, role)
	entry.CanDelete = authz.CanDelete(resource, role)
	return entry
}
