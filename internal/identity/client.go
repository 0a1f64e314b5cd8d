// Package identity authenticates principals against the external identity
// backend and owns the session lifecycle built on top of it.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/session"
	"github.com/nayea-id/nayea/internal/shared"
)

// Client talks to the identity backend. The backend is opaque: this client
// only understands its JSON envelopes, never its storage or password rules.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// flexID tolerates backends that serialize IDs as numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type backendUser struct {
	ID         flexID `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Avatar     string `json:"avatar"`
	EmployeeID string `json:"employeeId"`
	Department string `json:"department"`
}

type loginResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	User         *backendUser `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type googleVerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *struct {
		User  *backendUser `json:"user"`
		Token string       `json:"token"`
	} `json:"data"`
}

type registerResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *backendUser `json:"user"`
}

// Login exchanges email/password credentials for a principal. Every failure
// mode, including the backend being unreachable, collapses into
// shared.ErrInvalidCredentials so callers cannot distinguish a wrong password
// from an unknown email.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Principal, error) {
	var resp loginResponse
	if err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		c.logger.Warn("identity login request failed", slog.Any("error", err))
		return nil, shared.ErrInvalidCredentials
	}
	if !resp.Success || resp.User == nil {
		return nil, shared.ErrInvalidCredentials
	}
	p := c.principalFromUser(resp.User)
	p.AccessToken = resp.AccessToken
	p.RefreshToken = resp.RefreshToken
	return p, nil
}

// VerifyGoogleToken submits a third-party OAuth token for backend
// verification. Rejection aborts sign-in entirely: no partial principal is
// ever returned.
func (c *Client) VerifyGoogleToken(ctx context.Context, token string) (*session.Principal, error) {
	var resp googleVerifyResponse
	if err := c.post(ctx, "/auth/google/verify", map[string]string{"token": token}, &resp); err != nil {
		c.logger.Warn("identity google verify request failed", slog.Any("error", err))
		return nil, shared.ErrExternalTokenRejected
	}
	if !resp.Success || resp.Data == nil || resp.Data.User == nil {
		return nil, shared.ErrExternalTokenRejected
	}
	p := c.principalFromUser(resp.Data.User)
	p.AccessToken = resp.Data.Token
	return p, nil
}

// Register creates a new account through the backend. The role is pinned to
// least privilege here regardless of what the caller supplies.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var resp registerResponse
	if err := c.post(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     authz.RoleUser.String(),
	}, &resp); err != nil {
		c.logger.Warn("identity register request failed", slog.Any("error", err))
		return shared.ErrBackendUnavailable
	}
	if !resp.Success {
		if resp.Message != "" {
			return fmt.Errorf("identity: register rejected: %s", resp.Message)
		}
		return fmt.Errorf("identity: register rejected")
	}
	return nil
}

func (c *Client) principalFromUser(user *backendUser) *session.Principal {
	role, known := authz.ParseRole(user.Role)
	if !known {
		// Defaulting quietly could mask a backend regression, so the
		// downgrade is logged even though the request continues.
		c.logger.Warn("identity backend returned unknown role, defaulting to least privilege",
			slog.String("user_id", string(user.ID)),
			slog.String("raw_role", user.Role))
	}
	return &session.Principal{
		ID:         string(user.ID),
		Email:      user.Email,
		Name:       user.Name,
		Role:       role,
		EmployeeID: user.EmployeeID,
		Department: user.Department,
	}
}

func (c *Client) post(ctx context.Context, path string, payload any, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrBackendUnavailable, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", shared.ErrBackendUnavailable, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(target); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", path, err)
	}
	return nil
}
