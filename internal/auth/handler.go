// Package auth exposes the HTTP endpoints for sign-in, sign-out, and the
// current-session view consumed by the storefront.
package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/nayea-id/nayea/internal/identity"
	"github.com/nayea-id/nayea/internal/observability"
	"github.com/nayea-id/nayea/internal/platform/httpx"
	"github.com/nayea-id/nayea/internal/session"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	sessions  *identity.Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, sessions *identity.Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		sessions:  sessions,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. Credential
// endpoints carry their own per-IP rate limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	limited := r.With(httprate.LimitByIP(10, time.Minute))
	limited.Post("/login", h.handleLogin)
	limited.Post("/google", h.handleGoogleLogin)
	limited.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type googleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type principalPayload struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId,omitempty"`
	Department string `json:"department,omitempty"`
}

func toPayload(p *session.Principal) principalPayload {
	return principalPayload{
		ID:         p.ID,
		Email:      p.Email,
		Name:       p.Name,
		Role:       p.Role.String(),
		EmployeeID: p.EmployeeID,
		Department: p.Department,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body", httpx.CodeValidationFailed)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required", httpx.CodeValidationFailed)
		return
	}

	issued, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.ObserveLogin("credentials", "failure")
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveLogin("credentials", "success")
	h.sessions.WriteCookie(w, issued)
	httpx.OK(w, map[string]any{"user": toPayload(&issued.Token.Principal)})
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body", httpx.CodeValidationFailed)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Token is required", httpx.CodeValidationFailed)
		return
	}

	issued, err := h.sessions.SignInWithGoogle(r.Context(), req.Token)
	if err != nil {
		h.metrics.ObserveLogin("google", "failure")
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveLogin("google", "success")
	h.sessions.WriteCookie(w, issued)
	httpx.OK(w, map[string]any{"user": toPayload(&issued.Token.Principal)})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Malformed request body", httpx.CodeValidationFailed)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Name, email, and a password of at least 8 characters are required", httpx.CodeValidationFailed)
		return
	}

	if err := h.sessions.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		h.logger.Warn("register failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusBadGateway, "Registration is currently unavailable", httpx.CodeInternal)
		return
	}
	httpx.OK(w, map[string]any{"registered": true})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw, ok := session.ReadCookie(r); ok {
		if tok, err := h.sessions.Resolve(r.Context(), raw); err == nil {
			if err := h.sessions.SignOut(r.Context(), tok.ID); err != nil {
				h.logger.Warn("revoke session", slog.Any("error", err))
			}
		}
	}
	h.sessions.ClearCookie(w)
	httpx.OK(w, map[string]any{"signedOut": true})
}

// handleSession reports the current principal. Anonymous callers get a
// success:false envelope, not an error status, so the storefront can render
// its signed-out state without special-casing.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	raw, ok := session.ReadCookie(r)
	if !ok {
		httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: false, Code: httpx.CodeAuthRequired})
		return
	}
	tok, err := h.sessions.Resolve(r.Context(), raw)
	if err != nil {
		httpx.JSON(w, http.StatusOK, httpx.Envelope{Success: false, Code: httpx.CodeAuthRequired})
		return
	}
	httpx.OK(w, map[string]any{"user": toPayload(&tok.Principal)})
}
