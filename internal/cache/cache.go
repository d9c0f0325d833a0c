// SPDX-License-Identifier: MIT

// Package cache provides the small TTL caches the gateway needs: remembering
// upstream "no thumbnail" answers and memoizing resolved thumbnail URIs.
// Values are strings; an entry can be present with an empty value, which is
// how a negative result is represented.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a thread-safe string cache with per-entry expiry.
type TTLCache interface {
	// Get returns the cached value and whether the key is present and fresh.
	Get(key string) (string, bool)
	// Set stores value under key for ttl.
	Set(key, value string, ttl time.Duration)
	// Delete removes key.
	Delete(key string)
	// Close releases background resources.
	Close()
}

type entry struct {
	value     string
	expiresAt time.Time
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stop    chan struct{}
	once    sync.Once
}

// NewMemory creates an in-memory TTL cache. A janitor goroutine removes
// expired entries every cleanupInterval; pass 0 to disable it (expired
// entries are then only dropped on read).
func NewMemory(cleanupInterval time.Duration) TTLCache {
	c := &memoryCache{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *memoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (c *memoryCache) Set(key, value string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *memoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *memoryCache) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
