package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	cache := NewCache(time.Hour)
	cache.now = func() time.Time { return now }

	result := &Result{RunID: "run-1"}
	cache.Set("key", result)

	assert.Equal(t, result, cache.Get("key"))

	// Just before the deadline the entry is still live
	now = now.Add(59 * time.Minute)
	assert.NotNil(t, cache.Get("key"))

	// Past the deadline it is gone
	now = now.Add(2 * time.Minute)
	assert.Nil(t, cache.Get("key"))
}

func TestCacheMissingKey(t *testing.T) {
	cache := NewCache(time.Hour)
	assert.Nil(t, cache.Get("absent"))
}

func TestCacheInvalidate(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Set("key", &Result{RunID: "run-1"})

	cache.Invalidate()
	assert.Nil(t, cache.Get("key"))
}
