package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerCacheDisabled(t *testing.T) {
	cache := NewAnswerCache(nil, nil)

	_, err := cache.Get(context.Background(), "question", "en", nil)
	assert.Error(t, err)

	require.NoError(t, cache.Set(context.Background(), "question", "en", nil, &Answer{Text: "a"}))
	require.NoError(t, cache.Clear(context.Background()))

	stats, err := cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, stats["enabled"])
}

func TestAnswerCacheKey(t *testing.T) {
	cache := NewAnswerCache(nil, &AnswerCacheConfig{
		Enabled:   true,
		TTL:       time.Hour,
		KeyPrefix: "rafiq:answer:",
	})

	k1 := cache.cacheKey("What is the OMR?", "en", nil)
	k2 := cache.cacheKey("  what is the omr?  ", "en", nil)
	assert.Equal(t, k1, k2)

	k3 := cache.cacheKey("What is the OMR?", "en", []string{"Finance"})
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "rafiq:answer:")

	// The same question cached per response language.
	k4 := cache.cacheKey("What is the OMR?", "ar", nil)
	assert.NotEqual(t, k1, k4)
}
