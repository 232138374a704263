package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/support-recommender/internal/session"
	"github.com/godilite/support-recommender/pkg/cache"
)

const keyPrefix = "session:"

// JSONCache is the subset of *cache.Cache the redis store needs.
type JSONCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Redis keeps each session as a JSON document with a sliding TTL.
type Redis struct {
	cache JSONCache
	ttl   time.Duration
}

func NewRedis(c JSONCache, ttl time.Duration) *Redis {
	if c == nil {
		panic("nil cache provided to NewRedis")
	}
	return &Redis{cache: c, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context, id string) (session.State, error) {
	var st session.State
	err := r.cache.Get(ctx, keyPrefix+id, &st)
	if errors.Is(err, cache.ErrMiss) {
		return session.State{}, ErrNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("load session %s: %w", id, err)
	}
	if err := st.Validate(); err != nil {
		return session.State{}, fmt.Errorf("corrupt session %s: %w", id, err)
	}
	return st, nil
}

func (r *Redis) Save(ctx context.Context, id string, st session.State) error {
	if err := r.cache.Set(ctx, keyPrefix+id, st, r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
