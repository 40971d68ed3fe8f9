package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/statuswatch/models"
)

func TestGetRespectsMaxAge(t *testing.T) {
	c := New(10)
	defer c.Close()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := Key("https://example.com/results")
	c.Set(key, &models.PreviewResponse{Success: true, Title: "Results"})

	_, ok := c.Get(key, 0)
	assert.False(t, ok, "max_age 0 never hits")

	now = now.Add(500 * time.Millisecond)
	got, ok := c.Get(key, 1000)
	require.True(t, ok)
	assert.Equal(t, "Results", got.Title)

	now = now.Add(time.Second)
	_, ok = c.Get(key, 1000)
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	c := New(10)
	defer c.Close()

	key := Key("https://example.com")
	c.Set(key, &models.PreviewResponse{Title: "a"})

	got, ok := c.Get(key, 60_000)
	require.True(t, ok)
	got.CacheStatus = "hit"

	again, _ := c.Get(key, 60_000)
	assert.Empty(t, again.CacheStatus)
}

func TestSetEvictsAtCapacity(t *testing.T) {
	c := New(2)
	defer c.Close()

	c.Set(Key("https://a.example"), &models.PreviewResponse{})
	c.Set(Key("https://b.example"), &models.PreviewResponse{})
	c.Set(Key("https://b.example"), &models.PreviewResponse{})
	assert.Equal(t, 2, c.Len())

	c.Set(Key("https://c.example"), &models.PreviewResponse{})
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(Key("https://c.example"), 60_000)
	assert.True(t, ok)
}

func TestEvictExpired(t *testing.T) {
	c := New(10)
	defer c.Close()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set(Key("https://old.example"), &models.PreviewResponse{})
	now = now.Add(2 * time.Hour)
	c.Set(Key("https://new.example"), &models.PreviewResponse{})

	c.evictExpired()
	assert.Equal(t, 1, c.Len())
}

func TestKeyNormalizesHost(t *testing.T) {
	assert.Equal(t, Key("https://Example.COM/Path"), Key("HTTPS://example.com/Path"))
	assert.NotEqual(t, Key("https://example.com/path"), Key("https://example.com/Path"))
}
