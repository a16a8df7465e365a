package server

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type localEntry struct {
	expires time.Time
	data    []byte
}

// Cache is a redis-backed response cache with a short-lived local
// layer in front of it.
type Cache struct {
	client *redis.Client
	mu     sync.Mutex
	local  map[string]localEntry
}

const localTTL = time.Minute

func NewCache(addr, password string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: rdb, local: make(map[string]localEntry)}
}

func (c *Cache) Get(ctx context.Context, key string, out any) error {
	c.mu.Lock()
	entry, found := c.local[key]
	if found && time.Now().After(entry.expires) {
		delete(c.local, key)
		found = false
	}
	c.mu.Unlock()
	if found {
		return sonic.Unmarshal(entry.data, out)
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.local[key] = localEntry{expires: time.Now().Add(localTTL), data: data}
	c.mu.Unlock()
	return sonic.Unmarshal(data, out)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return err
	}
	ttl := localTTL
	if expiration < ttl {
		ttl = expiration
	}
	c.mu.Lock()
	c.local[key] = localEntry{expires: time.Now().Add(ttl), data: data}
	c.mu.Unlock()
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Invalidate drops the local layer, used after the catalog changes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.local = make(map[string]localEntry)
	c.mu.Unlock()
}

func (c *Cache) Close() {
	c.client.Close()
}
