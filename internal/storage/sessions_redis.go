package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

const sessionKeyPrefix = "whatsapp:session:"

// RedisSessionStore keeps sessions as JSON values so several instances can share conversations.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a store; ttl of zero keeps sessions forever.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if client == nil {
		panic("storage: redis client cannot be nil")
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

var (
	_ SessionStore   = (*RedisSessionStore)(nil)
	_ SessionCounter = (*RedisSessionStore)(nil)
)

func (r *RedisSessionStore) Get(ctx context.Context, userID string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("storage: failed to decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionStore) Set(ctx context.Context, session *models.Session) error {
	if session == nil || session.UserID == "" {
		return errors.New("session requires a user id")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("storage: failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("storage: failed to persist session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("storage: failed to count sessions: %w", err)
	}
	return count, nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}
