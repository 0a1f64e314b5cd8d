package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure. It deliberately carries
	// no detail about whether the email exists or which step rejected it.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrExternalTokenRejected occurs when the identity backend refuses a
	// third-party OAuth token during verification.
	ErrExternalTokenRejected = errors.New("external token rejected")
	// ErrSessionRevoked occurs when a structurally valid session token no
	// longer has a live registry entry.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrSessionExpired occurs when a session token is past its max-age.
	ErrSessionExpired = errors.New("session expired")
	// ErrBackendUnavailable indicates the identity backend could not be
	// reached or answered with an unexpected status.
	ErrBackendUnavailable = errors.New("identity backend unavailable")
)
