package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore keeps sessions as JSON under session:<id> with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// record is the stored form; Session hides Credential from JSON responses.
type record struct {
	Login      string    `json:"login"`
	Role       Role      `json:"role"`
	Credential string    `json:"credential"`
	StartedAt  time.Time `json:"started_at"`
}

func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func sessionKey(id uuid.UUID) string { return "session:" + id.String() }

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(record{Login: s.Login, Role: s.Role, Credential: s.Credential, StartedAt: s.StartedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.rdb.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	val, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return Session{ID: id, Login: rec.Login, Role: rec.Role, Credential: rec.Credential, StartedAt: rec.StartedAt}, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func (r *RedisStore) Close() error { return r.rdb.Close() }
