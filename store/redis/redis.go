package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smallnest/dinerec/recommend"
	"github.com/smallnest/dinerec/store"
)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "dinerec:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

func newClient(opts RedisOptions) (*redis.Client, string) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "dinerec:"
	}
	return client, prefix
}

// ContextStore implements store.ContextStore using Redis. Pending
// confirmation contexts naturally expire with the configured TTL.
type ContextStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewContextStore creates a Redis-backed context store.
func NewContextStore(opts RedisOptions) *ContextStore {
	client, prefix := newClient(opts)
	return &ContextStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *ContextStore) key(userID string) string {
	return fmt.Sprintf("%scontext:%s", s.prefix, userID)
}

func (s *ContextStore) Get(ctx context.Context, userID string) (*store.Context, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load context from redis: %w", err)
	}

	var c store.Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal context: %w", err)
	}
	return &c, nil
}

func (s *ContextStore) Set(ctx context.Context, userID string, c *store.Context) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context to redis: %w", err)
	}
	return nil
}

func (s *ContextStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete context from redis: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *ContextStore) Close() error {
	return s.client.Close()
}

// PreferenceStore implements store.PreferenceStore using Redis.
type PreferenceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewPreferenceStore creates a Redis-backed preference store.
func NewPreferenceStore(opts RedisOptions) *PreferenceStore {
	client, prefix := newClient(opts)
	return &PreferenceStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *PreferenceStore) key(userID string) string {
	return fmt.Sprintf("%sprefs:%s", s.prefix, userID)
}

// Get returns the stored preferences, or defaults for an unknown user.
func (s *PreferenceStore) Get(ctx context.Context, userID string) (recommend.Preferences, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return recommend.DefaultPreferences(), nil
		}
		return recommend.Preferences{}, fmt.Errorf("failed to load preferences from redis: %w", err)
	}

	var prefs recommend.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return recommend.Preferences{}, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	prefs.Normalize()
	return prefs, nil
}

func (s *PreferenceStore) Set(ctx context.Context, userID string, prefs recommend.Preferences) error {
	data, err := json.Marshal(&prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save preferences to redis: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *PreferenceStore) Close() error {
	return s.client.Close()
}
