// Package gate enforces fine-grained, per-resource authorization on HTTP
// handlers and serves the permission view the storefront renders from. All
// decisions delegate to the authz capability matrix; nothing here
// re-implements lookups.
package gate

import (
	"log/slog"
	"net/http"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
)

// Middleware wires authorization gates for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// denialPayload names only what the requester already knows: the resource,
// the action, and their own role. Matrix contents are never echoed back.
type denialPayload struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Role     string `json:"role"`
}

// Require ensures the current principal may perform the action on the
// resource. Anonymous callers get 401; authenticated callers without the
// capability get 403 with a denial payload.
func (m Middleware) Require(resource authz.Resource, action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := session.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "Authentication required", httpx.CodeAuthRequired)
				return
			}
			if !authz.HasPermission(resource, action, principal.Role) {
				if m.Logger != nil {
					m.Logger.Info("permission denied",
						slog.String("resource", resource.String()),
						slog.String("action", action.String()),
						slog.String("role", principal.Role.String()))
				}
				httpx.JSON(w, http.StatusForbidden, httpx.Envelope{
					Success: false,
					Message: "You do not have permission to perform this action",
					Code:    httpx.CodePermissionDenied,
					Data: denialPayload{
						Resource: resource.String(),
						Action:   action.String(),
						Role:     principal.Role.String(),
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRead is shorthand for Require(resource, authz.ActionRead).
func (m Middleware) RequireRead(resource authz.Resource) func(http.Handler) http.Handler {
	return m.Require(resource, authz.ActionRead)
}
