// Package redis provides a Redis-backed implementation of
// sitebot.SessionStore.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/ohmanagement/sitebot"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// KeyPrefix prefixes every session hash key.
const KeyPrefix = "sitebot:session:"

// Ensure SessionStore implements sitebot.SessionStore at compile time.
var _ sitebot.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one session's entries in a Redis hash that expires
// after the TTL without writes.
type SessionStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewClient connects to addr and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, sitebot.Errorf(sitebot.EUNAVAILABLE, "redis %s: %v", addr, err)
	}
	return client, nil
}

// NewSessionStore returns a store for the session identified by id.
// A non-positive ttl selects DefaultTTL.
func NewSessionStore(client *redis.Client, id string, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SessionStore{client: client, key: KeyPrefix + id, ttl: ttl}
}

// Key returns the hash key holding the session.
func (s *SessionStore) Key() string {
	return s.key
}

// Get returns the value stored under key.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, sitebot.Errorf(sitebot.EUNAVAILABLE, "redis get %s: %v", key, err)
	}
	return v, true, nil
}

// Set stores value under key and refreshes the session TTL.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	pipe.Expire(ctx, s.key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "redis set %s: %v", key, err)
	}
	return nil
}

// Clear deletes the session hash.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "redis clear: %v", err)
	}
	return nil
}
