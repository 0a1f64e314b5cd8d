package guard

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/identity"
	"github.com/nayea-id/nayea/internal/observability"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
)

// Decision is the guard's verdict for one request.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRedirectToLogin
	DecisionRedirectToUnauthorized
	DecisionReject401
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionRedirectToLogin:
		return "redirect_login"
	case DecisionRedirectToUnauthorized:
		return "redirect_unauthorized"
	case DecisionReject401:
		return "reject_401"
	}
	return "unknown"
}

// Forwarded identity metadata for downstream consumers.
const (
	HeaderUserRole  = "X-User-Role"
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderCompany   = "X-Company"

	companyHeaderValue = "Nayea.id - Islamic Fashion"

	loginPath        = "/login"
	unauthorizedPath = "/unauthorized"
)

// Decide maps a route class and the (possibly nil) principal to a verdict.
// It is pure: no clock, no I/O, no per-request state shared across calls.
func Decide(class RouteClass, principal *session.Principal) Decision {
	switch class {
	case RoutePublic, RouteExcluded:
		return DecisionAllow
	case RouteProtectedAPI:
		if principal == nil {
			return DecisionReject401
		}
		return DecisionAllow
	case RouteAdminOnly:
		if principal == nil {
			return DecisionRedirectToLogin
		}
		if principal.Role != authz.RoleAdmin {
			return DecisionRedirectToUnauthorized
		}
		return DecisionAllow
	case RouteStaffOrAdmin:
		if principal == nil {
			return DecisionRedirectToLogin
		}
		if principal.Role != authz.RoleStaff && principal.Role != authz.RoleAdmin {
			return DecisionRedirectToUnauthorized
		}
		return DecisionAllow
	case RouteProtected, RouteUnclassified:
		if principal == nil {
			return DecisionRedirectToLogin
		}
		return DecisionAllow
	}
	// Unknown class means a programming error upstream; require auth.
	if principal == nil {
		return DecisionRedirectToLogin
	}
	return DecisionAllow
}

// Guard is the route-guarding middleware.
type Guard struct {
	Sessions *identity.Service
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// Middleware resolves the session token, classifies the path, and enforces
// the verdict before the next handler runs. Any internal failure resolves to
// the anonymous path, never to open access.
func (g Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		class := Classify(path)
		if class == RouteUnclassified {
			g.Logger.Warn("unclassified route, failing closed", slog.String("path", path))
		}

		// Excluded routes skip token resolution entirely.
		if class == RouteExcluded {
			next.ServeHTTP(w, r)
			return
		}

		principal := g.resolvePrincipal(w, r)
		decision := Decide(class, principal)
		g.Metrics.ObserveGuardDecision(class.String(), decision.String())

		switch decision {
		case DecisionReject401:
			httpx.Fail(w, http.StatusUnauthorized, "Authentication required", httpx.CodeAuthRequired)
			return
		case DecisionRedirectToLogin:
			target := loginPath + "?callbackUrl=" + url.QueryEscape(path)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		case DecisionRedirectToUnauthorized:
			http.Redirect(w, r, unauthorizedPath, http.StatusSeeOther)
			return
		}

		if principal != nil {
			w.Header().Set(HeaderUserRole, principal.Role.String())
			w.Header().Set(HeaderUserID, principal.ID)
			w.Header().Set(HeaderUserEmail, principal.Email)
			r = r.WithContext(session.ContextWithPrincipal(r.Context(), principal))
		}
		w.Header().Set(HeaderCompany, companyHeaderValue)

		next.ServeHTTP(w, r)
	})
}

// resolvePrincipal validates the session cookie and renews it past the
// half-life. Every failure path returns nil: an invalid, expired, or revoked
// token is an anonymous caller, not an error page.
func (g Guard) resolvePrincipal(w http.ResponseWriter, r *http.Request) *session.Principal {
	raw, ok := session.ReadCookie(r)
	if !ok {
		return nil
	}
	tok, err := g.Sessions.Resolve(r.Context(), raw)
	if err != nil {
		g.Logger.Debug("session resolution failed", slog.Any("error", err))
		return nil
	}
	if g.Sessions.ShouldRenew(tok) {
		if issued, err := g.Sessions.Renew(r.Context(), tok); err == nil {
			g.Sessions.WriteCookie(w, issued)
			tok = issued.Token
		} else {
			g.Logger.Warn("session renewal failed", slog.Any("error", err))
		}
	}
	p := tok.Principal
	return &p
}
