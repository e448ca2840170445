// Package session implements Redis-backed server-side sessions. A
// session binds an opaque token to a user ID for its TTL; logging out
// deletes the token, which immediately revokes it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the cookie carrying the session token.
const CookieName = "inkwell_session"

const keyPrefix = "sess:"

// ErrNoSession indicates the token is unknown, expired, or revoked.
var ErrNoSession = errors.New("session not found")

// Manager tracks authenticated identities in Redis.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager returns a Manager storing sessions with the given TTL.
func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	return &Manager{redis: client, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create binds a new opaque token to the given user ID and returns it.
func (m *Manager) Create(ctx context.Context, userID uint) (string, error) {
	token := uuid.NewString()
	key := keyPrefix + token
	if err := m.redis.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), m.ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// UserID resolves a token to the user ID it was bound to.
// Returns ErrNoSession for unknown, expired, or revoked tokens.
func (m *Manager) UserID(ctx context.Context, token string) (uint, error) {
	if token == "" || strings.ContainsAny(token, " \t\n") {
		return 0, ErrNoSession
	}
	val, err := m.redis.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	id, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		// Corrupt value; treat as revoked rather than erroring forever.
		if delErr := m.redis.Del(ctx, keyPrefix+token).Err(); delErr != nil {
			log.Printf("session cleanup failed for corrupt token: %v", delErr)
		}
		return 0, ErrNoSession
	}
	return uint(id), nil
}

// Destroy revokes the token. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.redis.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
