package gate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/session"
)

func serveGated(t *testing.T, resource authz.Resource, action authz.Action, principal *session.Principal) *httptest.ResponseRecorder {
	t.Helper()
	m := Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		req = req.WithContext(session.ContextWithPrincipal(req.Context(), principal))
	}
	res := httptest.NewRecorder()
	m.Require(resource, action)(next).ServeHTTP(res, req)
	return res
}

func TestRequireAnonymousGets401(t *testing.T) {
	res := serveGated(t, authz.ResourceProducts, authz.ActionRead, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireDeniedGets403WithDenialPayload(t *testing.T) {
	staff := &session.Principal{ID: "2", Role: authz.RoleStaff}
	res := serveGated(t, authz.ResourceProducts, authz.ActionDelete, staff)
	require.Equal(t, http.StatusForbidden, res.Code)

	var body struct {
		Success bool `json:"success"`
		Code    string
		Data    struct {
			Resource string `json:"resource"`
			Action   string `json:"action"`
			Role     string `json:"role"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "products", body.Data.Resource)
	assert.Equal(t, "delete", body.Data.Action)
	assert.Equal(t, "staff", body.Data.Role)
}

func TestRequireGrantedPassesThrough(t *testing.T) {
	staff := &session.Principal{ID: "2", Role: authz.RoleStaff}
	res := serveGated(t, authz.ResourceProducts, authz.ActionUpdate, staff)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRequireUnknownResourceFailsClosed(t *testing.T) {
	admin := &session.Principal{ID: "1", Role: authz.RoleAdmin}
	res := serveGated(t, authz.Resource("warehouse"), authz.ActionRead, admin)
	assert.Equal(t, http.StatusForbidden, res.Code)
}
