package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/shared"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginSuccess(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "siti@nayea.id", body["email"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user": map[string]any{
				"id":         7,
				"email":      "siti@nayea.id",
				"name":       "Siti",
				"role":       "staff",
				"employeeId": "EMP-001",
				"department": "support",
			},
			"accessToken":  "at-1",
			"refreshToken": "rt-1",
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	principal, err := client.Login(context.Background(), "siti@nayea.id", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "7", principal.ID)
	assert.Equal(t, authz.RoleStaff, principal.Role)
	assert.Equal(t, "EMP-001", principal.EmployeeID)
	assert.Equal(t, "support", principal.Department)
	assert.Equal(t, "at-1", principal.AccessToken)
	assert.Equal(t, "rt-1", principal.RefreshToken)
}

func TestLoginRejectedIsGeneric(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "no account for that email",
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	_, err := client.Login(context.Background(), "ghost@nayea.id", "whatever1")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials), "got %v", err)
}

func TestLoginBackendUnreachableIsGeneric(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, discardLogger())
	_, err := client.Login(context.Background(), "siti@nayea.id", "rahasia123")
	assert.True(t, errors.Is(err, shared.ErrInvalidCredentials), "got %v", err)
}

func TestLoginMissingRoleDefaultsToUser(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]any{"id": "9", "email": "x@nayea.id", "name": "X"},
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	principal, err := client.Login(context.Background(), "x@nayea.id", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, principal.Role)
}

func TestLoginNeverElevatesUnknownRole(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    map[string]any{"id": "9", "role": "root"},
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	principal, err := client.Login(context.Background(), "x@nayea.id", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleUser, principal.Role)
}

func TestVerifyGoogleTokenSuccess(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/google/verify", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user":  map[string]any{"id": "g-1", "email": "g@nayea.id", "role": "user"},
				"token": "backend-jwt",
			},
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	principal, err := client.VerifyGoogleToken(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "g-1", principal.ID)
	assert.Equal(t, "backend-jwt", principal.AccessToken)
}

func TestVerifyGoogleTokenRejectedAbortsSignIn(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad token"})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	principal, err := client.VerifyGoogleToken(context.Background(), "forged")
	assert.Nil(t, principal)
	assert.True(t, errors.Is(err, shared.ErrExternalTokenRejected), "got %v", err)
}

func TestRegisterPinsRoleToUser(t *testing.T) {
	var gotRole string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRole = body["role"]
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "user": map[string]any{"id": "11"}})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, time.Second, discardLogger())
	require.NoError(t, client.Register(context.Background(), "Budi", "budi@nayea.id", "rahasia123"))
	assert.Equal(t, "user", gotRole)
}
