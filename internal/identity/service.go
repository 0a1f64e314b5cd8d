package identity

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nayea-id/nayea/internal/session"
)

var timeNow = time.Now

// Authenticator is the slice of Client the Service needs; tests substitute
// an httptest-backed client or a stub.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*session.Principal, error)
	VerifyGoogleToken(ctx context.Context, token string) (*session.Principal, error)
	Register(ctx context.Context, name, email, password string) error
}

// Service owns the session lifecycle: it authenticates against the backend,
// mints local session tokens, resolves them on later requests, renews them
// lazily, and revokes them on sign-out.
type Service struct {
	backend  Authenticator
	tokens   *session.Manager
	sessions *session.Store
	logger   *slog.Logger
	renewals singleflight.Group
}

// Issued is the result of a successful sign-in: the signed token for the
// cookie plus its decoded form.
type Issued struct {
	Signed string
	Token  *session.Token
}

// NewService constructs a Service.
func NewService(backend Authenticator, tokens *session.Manager, sessions *session.Store, logger *slog.Logger) *Service {
	return &Service{backend: backend, tokens: tokens, sessions: sessions, logger: logger}
}

// SignIn runs the credential flow: backend exchange, local token mint,
// registry entry. Any failure leaves the caller anonymous; a half-created
// session is never handed out.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Issued, error) {
	principal, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.Establish(ctx, principal)
}

// SignInWithGoogle runs the OAuth variant: the backend must accept the
// external token before any local session exists.
func (s *Service) SignInWithGoogle(ctx context.Context, externalToken string) (*Issued, error) {
	principal, err := s.backend.VerifyGoogleToken(ctx, externalToken)
	if err != nil {
		return nil, err
	}
	return s.Establish(ctx, principal)
}

// Register proxies account creation to the backend.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	return s.backend.Register(ctx, name, email, password)
}

// SignOut revokes the session so later requests resolve as anonymous.
func (s *Service) SignOut(ctx context.Context, tokenID string) error {
	return s.sessions.Revoke(ctx, tokenID)
}

// Resolve validates a raw token and confirms the session is still live.
// Errors mean "treat the caller as anonymous", not "fail the request".
func (s *Service) Resolve(ctx context.Context, raw string) (*session.Token, error) {
	tok, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	// The registry is authoritative over the claims: role changes and
	// sign-outs land there first.
	principal, err := s.sessions.Lookup(ctx, tok.ID)
	if err != nil {
		return nil, err
	}
	tok.Principal = *principal
	return tok, nil
}

// ShouldRenew reports whether the token is past its renewal threshold.
func (s *Service) ShouldRenew(tok *session.Token) bool {
	return s.tokens.ShouldRenew(tok, timeNow())
}

// Renew re-mints the session with a fresh expiry without re-authenticating.
// Concurrent renewals of one session collapse into a single mint so parallel
// requests do not race each other into revoked tokens.
func (s *Service) Renew(ctx context.Context, tok *session.Token) (*Issued, error) {
	v, err, _ := s.renewals.Do(tok.ID, func() (any, error) {
		signed, fresh, err := s.tokens.Issue(tok.Principal)
		if err != nil {
			return nil, err
		}
		if err := s.sessions.Renew(ctx, tok.ID, fresh); err != nil {
			return nil, err
		}
		return &Issued{Signed: signed, Token: fresh}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Issued), nil
}

// WriteCookie attaches the session cookie for an issued token.
func (s *Service) WriteCookie(w http.ResponseWriter, issued *Issued) {
	s.tokens.WriteCookie(w, issued.Signed)
}

// ClearCookie expires the session cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	s.tokens.ClearCookie(w)
}

// Establish mints and registers a session for an already-authenticated
// principal. SignIn and SignInWithGoogle route through it; tests use it to
// seed sessions without a backend.
func (s *Service) Establish(ctx context.Context, principal *session.Principal) (*Issued, error) {
	signed, tok, err := s.tokens.Issue(*principal)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Register(ctx, tok); err != nil {
		s.logger.Error("register session", slog.Any("error", err))
		return nil, err
	}
	return &Issued{Signed: signed, Token: tok}, nil
}
