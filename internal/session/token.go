// Package session mints and validates the local session token that carries
// the role claim, and tracks live sessions so sign-out revokes immediately.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nayea-id/nayea/internal/authz"
	"github.com/nayea-id/nayea/internal/shared"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "nayea_session"

// Principal is the authenticated actor as represented by a session.
// EmployeeID and Department are populated only for staff accounts.
type Principal struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         authz.Role `json:"role"`
	AccessToken  string     `json:"accessToken,omitempty"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	EmployeeID   string     `json:"employeeId,omitempty"`
	Department   string     `json:"department,omitempty"`
}

// Claims is the JWT payload for a session token.
type Claims struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
	Department   string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Token is a decoded, verified session token.
type Token struct {
	ID        string // jti, the revocation key
	Principal Principal
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager signs and verifies session tokens with HMAC-SHA256.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager constructs a Manager. The ttl bounds the session max-age;
// re-authentication is required once it elapses.
func NewManager(secret string, ttl time.Duration, secure bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session: secret must be provided")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}, nil
}

// TTL exposes the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed token for the principal. The returned Token carries
// the generated session ID for registration in the live-session store.
func (m *Manager) Issue(p Principal) (string, *Token, error) {
	now := time.Now()
	id := uuid.NewString()
	claims := &Claims{
		Email:        p.Email,
		Name:         p.Name,
		Role:         p.Role.String(),
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		EmployeeID:   p.EmployeeID,
		Department:   p.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, &Token{
		ID:        id,
		Principal: p,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}, nil
}

// Parse verifies the signature and lifetime of a raw token string. Expired
// tokens return shared.ErrSessionExpired; every other defect is reported as
// a plain parse error. Callers treat any error as logged-out, never as a
// server fault.
func (m *Manager) Parse(raw string) (*Token, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("session: unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrSessionExpired
		}
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("session: invalid token")
	}

	// An unknown role claim degrades to least privilege rather than failing
	// the request; the caller decides whether to log it.
	role, _ := authz.ParseRole(claims.Role)

	tok := &Token{
		ID: claims.ID,
		Principal: Principal{
			ID:           claims.Subject,
			Email:        claims.Email,
			Name:         claims.Name,
			Role:         role,
			AccessToken:  claims.AccessToken,
			RefreshToken: claims.RefreshToken,
			EmployeeID:   claims.EmployeeID,
			Department:   claims.Department,
		},
	}
	if claims.IssuedAt != nil {
		tok.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		tok.ExpiresAt = claims.ExpiresAt.Time
	}
	return tok, nil
}

// ShouldRenew reports whether the token has passed half of its lifetime.
// Renewal happens lazily on the next authenticated request, never from a
// background timer.
func (m *Manager) ShouldRenew(tok *Token, now time.Time) bool {
	if tok == nil || tok.IssuedAt.IsZero() || tok.ExpiresAt.IsZero() {
		return false
	}
	halfway := tok.IssuedAt.Add(tok.ExpiresAt.Sub(tok.IssuedAt) / 2)
	return now.After(halfway) && now.Before(tok.ExpiresAt)
}

// WriteCookie attaches the signed token to the response.
func (m *Manager) WriteCookie(w http.ResponseWriter, signed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(m.ttl),
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie extracts the raw token from the request, if present.
func ReadCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
