package guard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/identity"
	"github.com/nayea-id/nayea/internal/observability"
	"github.com/nayea-id/nayea/internal/session"
)

func TestDecide(t *testing.T) {
	admin := &session.Principal{ID: "1", Role: authz.RoleAdmin}
	staff := &session.Principal{ID: "2", Role: authz.RoleStaff}
	user := &session.Principal{ID: "3", Role: authz.RoleUser}

	tests := []struct {
		name      string
		class     RouteClass
		principal *session.Principal
		want      Decision
	}{
		{"public anonymous", RoutePublic, nil, DecisionAllow},
		{"excluded anonymous", RouteExcluded, nil, DecisionAllow},
		{"protected anonymous", RouteProtected, nil, DecisionRedirectToLogin},
		{"protected user", RouteProtected, user, DecisionAllow},
		{"admin route anonymous", RouteAdminOnly, nil, DecisionRedirectToLogin},
		{"admin route staff", RouteAdminOnly, staff, DecisionRedirectToUnauthorized},
		{"admin route user", RouteAdminOnly, user, DecisionRedirectToUnauthorized},
		{"admin route admin", RouteAdminOnly, admin, DecisionAllow},
		{"staff route user", RouteStaffOrAdmin, user, DecisionRedirectToUnauthorized},
		{"staff route staff", RouteStaffOrAdmin, staff, DecisionAllow},
		{"staff route admin", RouteStaffOrAdmin, admin, DecisionAllow},
		{"api anonymous", RouteProtectedAPI, nil, DecisionReject401},
		{"api user", RouteProtectedAPI, user, DecisionAllow},
		{"unclassified anonymous fails closed", RouteUnclassified, nil, DecisionRedirectToLogin},
		{"unclassified authenticated", RouteUnclassified, user, DecisionAllow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.class, tc.principal))
		})
	}
}

type guardFixture struct {
	guard    Guard
	sessions *identity.Service
}

func newGuardFixture(t *testing.T) guardFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mgr, err := session.NewManager("test-secret", time.Hour, false)
	require.NoError(t, err)
	store := session.NewStore(client, time.Hour)
	sessions := identity.NewService(nil, mgr, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return guardFixture{
		guard:    Guard{Sessions: sessions, Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Metrics: observability.NewMetrics()},
		sessions: sessions,
	}
}

// signIn mints and registers a session directly, bypassing the backend.
func (f guardFixture) signIn(t *testing.T, role authz.Role) *http.Cookie {
	t.Helper()
	principal := session.Principal{ID: "10", Email: "t@nayea.id", Name: "T", Role: role}
	issued, err := f.sessions.Establish(context.Background(), &principal)
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: issued.Signed}
}

func (f guardFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page"))
	})
	f.guard.Middleware(next).ServeHTTP(res, req)
	return res
}

func TestGuardAdminDashboardWithoutToken(t *testing.T) {
	f := newGuardFixture(t)

	res := f.serve(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fadmin%2Fdashboard", res.Header().Get("Location"))
}

func TestGuardAdminDashboardWithStaffToken(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(f.signIn(t, authz.RoleStaff))
	res := f.serve(req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/unauthorized", res.Header().Get("Location"))
}

func TestGuardAdminDashboardWithAdminToken(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(f.signIn(t, authz.RoleAdmin))
	res := f.serve(req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "admin", res.Header().Get(HeaderUserRole))
	assert.Equal(t, "10", res.Header().Get(HeaderUserID))
	assert.Equal(t, "t@nayea.id", res.Header().Get(HeaderUserEmail))
	assert.Equal(t, companyHeaderValue, res.Header().Get(HeaderCompany))
}

func TestGuardProtectedAPIWithoutToken(t *testing.T) {
	f := newGuardFixture(t)

	res := f.serve(httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "application/json", res.Header().Get("Content-Type"))

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "AUTH_REQUIRED", body.Code)
	assert.NotEmpty(t, body.Message)
}

func TestGuardRevokedTokenIsAnonymous(t *testing.T) {
	f := newGuardFixture(t)

	cookie := f.signIn(t, authz.RoleAdmin)
	tok, err := f.sessions.Resolve(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.NoError(t, f.sessions.SignOut(context.Background(), tok.ID))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	res := f.serve(req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard", res.Header().Get("Location"))
}

func TestGuardGarbageTokenIsAnonymousNotError(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-jwt"})
	res := f.serve(req)

	require.Equal(t, http.StatusSeeOther, res.Code)
}

func TestGuardPublicRouteSkipsSession(t *testing.T) {
	f := newGuardFixture(t)

	res := f.serve(httptest.NewRequest(http.MethodGet, "/shop", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, res.Header().Get(HeaderUserRole))
}
