// SPDX-License-Identifier: MIT
package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ivsgw/internal/log"
)

func newRedisCache(t *testing.T) (TTLCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(mr.Addr(), log.WithComponent("cache-test"))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, mr
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("k", "v", time.Minute)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("absent")
	assert.False(t, ok)
}

func TestRedisCacheEmptyValue(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("neg", "", time.Minute)
	got, ok := c.Get("neg")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRedisCacheExpiry(t *testing.T) {
	c, mr := newRedisCache(t)

	c.Set("k", "v", 50*time.Millisecond)
	mr.FastForward(time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := newRedisCache(t)

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestRedisUnreachable(t *testing.T) {
	_, err := NewRedis("127.0.0.1:1", log.WithComponent("cache-test"))
	require.Error(t, err)
}
