package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nayea-id/nayea/internal/shared"
)

// Store is the registry of live sessions, keyed by token ID. A token whose
// registry entry is gone is treated as revoked even when its signature and
// lifetime still verify, which is what makes sign-out take effect
// immediately across requests.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

type storedSession struct {
	Principal Principal `json:"principal"`
	IssuedAt  time.Time `json:"issued_at"`
}

// NewStore constructs a Store. Entries expire together with the token they
// back, so the registry never outlives the session max-age.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Register records a freshly issued session.
func (s *Store) Register(ctx context.Context, tok *Token) error {
	payload, err := json.Marshal(storedSession{Principal: tok.Principal, IssuedAt: tok.IssuedAt})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(tok.ID), payload, s.ttl).Err()
}

// Lookup returns the registered principal for a token ID, or
// shared.ErrSessionRevoked when no live entry exists.
func (s *Store) Lookup(ctx context.Context, id string) (*Principal, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrSessionRevoked
		}
		return nil, err
	}
	var stored storedSession
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	return &stored.Principal, nil
}

// Revoke removes the registry entry for a token ID. Revoking an already
// absent session is not an error.
func (s *Store) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// Renew re-registers a session under a new token ID and drops the old entry.
func (s *Store) Renew(ctx context.Context, oldID string, tok *Token) error {
	if err := s.Register(ctx, tok); err != nil {
		return err
	}
	return s.Revoke(ctx, oldID)
}

func (s *Store) key(id string) string {
	return "session:" + id
}
