package embedcache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/versedb/versed/internal/embedcache"
)

func TestCachePutGet(t *testing.T) {
	cache := embedcache.New()
	require.Nil(t, cache.Get("query"))

	cache.Put("query", []float32{0.1, 0.2})
	require.Equal(t, []float32{0.1, 0.2}, cache.Get("query"))
	require.Equal(t, 1, cache.Len())

	// The cached copy must not alias the caller's slice.
	got := cache.Get("query")
	got[0] = 9
	require.Equal(t, []float32{0.1, 0.2}, cache.Get("query"))
}

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Now()
	cache := embedcache.New(
		embedcache.WithTTL(5*time.Minute),
		embedcache.WithClock(func() time.Time { return now }),
	)
	cache.Put("query", []float32{1})

	now = now.Add(4 * time.Minute)
	require.NotNil(t, cache.Get("query"))

	now = now.Add(2 * time.Minute)
	require.Nil(t, cache.Get("query"))
	require.Equal(t, 0, cache.Len())
}

func TestCacheEvictsOldestBatch(t *testing.T) {
	now := time.Now()
	cache := embedcache.New(
		embedcache.WithCapacity(100, 20),
		embedcache.WithClock(func() time.Time { return now }),
	)
	for i := 0; i < 100; i++ {
		cache.Put(fmt.Sprintf("query-%d", i), []float32{float32(i)})
		now = now.Add(time.Second)
	}
	require.Equal(t, 100, cache.Len())

	cache.Put("query-100", []float32{100})
	require.Equal(t, 81, cache.Len())

	// The 20 oldest entries are gone, everything newer survives.
	for i := 0; i < 20; i++ {
		require.Nil(t, cache.Get(fmt.Sprintf("query-%d", i)))
	}
	require.NotNil(t, cache.Get("query-20"))
	require.NotNil(t, cache.Get("query-100"))
}

func TestCachePutOverwritesEntry(t *testing.T) {
	cache := embedcache.New()
	cache.Put("query", []float32{1})
	cache.Put("query", []float32{2})
	require.Equal(t, 1, cache.Len())
	require.Equal(t, []float32{2}, cache.Get("query"))
}
