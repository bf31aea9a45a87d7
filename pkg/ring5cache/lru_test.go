package ring5cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikiitin/ring5/pkg/ring5cache"
)

func unitSize(string) int64 { return 1 }

func TestCacheGetMiss(t *testing.T) {
	c := ring5cache.New[string, string](10, unitSize)

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestCachePutGetRoundTrip(t *testing.T) {
	c := ring5cache.New[string, string](10, unitSize)

	c.Put("a", "value-a")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "value-a", v)
}

func TestCacheEvictsUnderPressure(t *testing.T) {
	c := ring5cache.New[string, string](2, unitSize)

	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("c", "3")

	stats := c.Stats()
	assert.LessOrEqual(t, stats.CurrentSize, int64(2))
	assert.Equal(t, 2, stats.Entries)
}

func TestCacheRejectsOversizedValue(t *testing.T) {
	c := ring5cache.New[string, string](1, func(string) int64 { return 5 })

	c.Put("a", "too-big")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
