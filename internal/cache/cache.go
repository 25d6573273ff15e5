// Package cache keeps a short-lived copy of current-user profiles in Redis.
// The cache is best-effort: when Redis is absent or failing, every call
// degrades to the backing store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/truekeo/truekeo-api/internal/models"
)

const profileTTL = 5 * time.Minute

// ProfileCache caches user profiles keyed by user ID.
type ProfileCache struct {
	client *redis.Client
	log    *zap.Logger
}

// NewProfileCache connects to Redis at the given URL. An empty URL or an
// unreachable server yields a disabled cache, not an error.
func NewProfileCache(redisURL string, log *zap.Logger) *ProfileCache {
	p := &ProfileCache{log: log}
	if redisURL == "" {
		return p
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn("invalid REDIS_URL, continuing without profile cache", zap.Error(err))
		return p
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, continuing without profile cache", zap.Error(err))
		return p
	}

	p.client = client
	return p
}

func profileKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

// Get returns the cached profile for id, if present.
func (p *ProfileCache) Get(ctx context.Context, id uuid.UUID) (*models.User, bool) {
	if p.client == nil {
		return nil, false
	}

	raw, err := p.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.log.Warn("profile cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, false
	}
	return &u, true
}

// Set stores a profile with the standard TTL.
func (p *ProfileCache) Set(ctx context.Context, u *models.User) {
	if p.client == nil || u == nil {
		return
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := p.client.Set(ctx, profileKey(u.ID), raw, profileTTL).Err(); err != nil {
		p.log.Warn("profile cache write failed", zap.Error(err))
	}
}

// Invalidate drops a cached profile after an edit.
func (p *ProfileCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if p.client == nil {
		return
	}
	if err := p.client.Del(ctx, profileKey(id)).Err(); err != nil {
		p.log.Warn("profile cache invalidation failed", zap.Error(err))
	}
}
