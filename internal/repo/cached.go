package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// cachedEntry remembers absent keys as well as present ones.
type cachedEntry struct {
	value string
	ok    bool
}

// cachedSettings is a read-through cache in front of another SettingsRepo.
// Set writes through and refreshes the cached entry.
type cachedSettings struct {
	next  SettingsRepo
	cache *cache.Cache
}

// NewCachedSettings wraps next with an in-process cache whose entries live for ttl.
// A ttl of zero or less disables caching and returns next unchanged.
func NewCachedSettings(next SettingsRepo, ttl time.Duration) SettingsRepo {
	if ttl <= 0 {
		return next
	}
	return &cachedSettings{next: next, cache: cache.New(ttl, 2*ttl)}
}

func (c *cachedSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if hit, found := c.cache.Get(key); found {
		e := hit.(cachedEntry)
		return e.value, e.ok, nil
	}
	v, ok, err := c.next.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.cache.Set(key, cachedEntry{value: v, ok: ok}, cache.DefaultExpiration)
	return v, ok, nil
}

func (c *cachedSettings) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, cachedEntry{value: value, ok: true}, cache.DefaultExpiration)
	return nil
}
