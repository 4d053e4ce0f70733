// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache(0)

	cache.Set("genres", []byte(`[{"genre_id":1}]`), 5*time.Minute)

	val, ok := cache.Get("genres")
	require.True(t, ok)
	assert.Equal(t, `[{"genre_id":1}]`, string(val))

	_, ok = cache.Get("nonexistent")
	assert.False(t, ok)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := NewMemoryCache(0)
	in := []byte("abc")
	cache.Set("k", in, time.Minute)
	in[0] = 'x'

	out, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(out))

	out[1] = 'y'
	again, _ := cache.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_NonPositiveTTLIsIgnored(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("k", []byte("v"), 0)
	_, ok := cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, int64(0), cache.Stats().Sets)
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("shortlived", []byte("value"), 50*time.Millisecond)

	_, ok := cache.Get("shortlived")
	require.True(t, ok)

	time.Sleep(100 * time.Millisecond)

	_, ok = cache.Get("shortlived")
	assert.False(t, ok, "expected key to be expired")
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("key1", []byte("value1"), 5*time.Minute)
	cache.Set("key2", []byte("value2"), 5*time.Minute)

	cache.Delete("key1")
	_, ok := cache.Get("key1")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Stats().CurrentSize)

	cache.Clear()
	assert.Equal(t, 0, cache.Stats().CurrentSize)
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(0)
	cache.Set("key1", []byte("value1"), 5*time.Minute)
	cache.Set("key2", []byte("value2"), 5*time.Minute)

	cache.Get("key1")
	cache.Get("key1")
	cache.Get("nonexistent")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, 2, stats.CurrentSize)
}

func TestMemoryCache_Janitor(t *testing.T) {
	cache := NewMemoryCache(50 * time.Millisecond)
	defer func() { _ = cache.Close() }()

	cache.Set("key1", []byte("value1"), 30*time.Millisecond)
	cache.Set("key2", []byte("value2"), 30*time.Millisecond)
	cache.Set("longLived", []byte("value3"), 10*time.Second)

	assert.Eventually(t, func() bool {
		return cache.Stats().CurrentSize == 1
	}, 2*time.Second, 20*time.Millisecond, "janitor should have removed expired entries")
	assert.Greater(t, cache.Stats().Evictions, int64(0))

	_, ok := cache.Get("longLived")
	assert.True(t, ok)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(10 * time.Millisecond)
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	defer func() { _ = cache.Close() }()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Set(fmt.Sprintf("k%d-%d", w, i%10), []byte("v"), time.Minute)
			}
		}(w)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Get(fmt.Sprintf("k%d-%d", w, i%10))
			}
		}(w)
	}
	wg.Wait()
	assert.LessOrEqual(t, cache.Stats().CurrentSize, 40)
}

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	cache.Set("k", []byte("v"), time.Minute)
	_, ok := cache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, CacheStats{}, cache.Stats())
	assert.NoError(t, cache.Close())
}
