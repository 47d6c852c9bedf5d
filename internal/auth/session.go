package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour
)

// Store manages owner sessions in Redis.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewStore returns a new session store. keyPrefix namespaces the keys so the
// sessions can share a Redis database with the board.
func NewStore(rdb *redis.Client, ttl time.Duration, keyPrefix string) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl, prefix: keyPrefix + sessionKeyPrefix}
}

// Create stores a new session and returns its ID.
func (s *Store) Create(ctx context.Context) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.prefix+id, "1", s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.prefix+id).Err()
}

// Exists returns true if the session exists and has not expired.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TTL is the lifetime given to new sessions.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
