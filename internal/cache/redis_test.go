package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache starts an in-process miniredis server and wraps it with the
// application cache service.
func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: srv.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisCache(client), srv
}

func TestRedisCache_SetAndGetSetting(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		settingName  string
		settingValue string
	}{
		{
			name:         "Should round-trip a plain configuration",
			settingName:  "DiscountRequirement.HasOneProduct-1",
			settingValue: "77, 123:2, 156:3-8",
		},
		{
			name:         "Should round-trip an empty configuration",
			settingName:  "DiscountRequirement.HasOneProduct-2",
			settingValue: "",
		},
		{
			name:         "Should round-trip a configuration with separators",
			settingName:  "DiscountRequirement.HasOneProduct-3",
			settingValue: "1:2-3,4:5,6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := cache.SetSetting(ctx, tt.settingName, tt.settingValue)
			require.NoError(t, err)

			got, err := cache.GetSetting(ctx, tt.settingName)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.settingValue, got)

			// Keys are namespaced under the setting prefix.
			assert.True(t, srv.Exists(KeyPrefix+":"+tt.settingName))
		})
	}
}

func TestRedisCache_GetSetting_Missing(t *testing.T) {
	cache, _ := newTestCache(t)

	// Act
	_, err := cache.GetSetting(context.Background(), "DiscountRequirement.HasOneProduct-404")

	// Assert
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCache_DeleteSetting(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	// Arrange
	require.NoError(t, cache.SetSetting(ctx, "DiscountRequirement.HasOneProduct-7", "42"))

	// Act
	err := cache.DeleteSetting(ctx, "DiscountRequirement.HasOneProduct-7")
	require.NoError(t, err)

	// Assert
	_, err = cache.GetSetting(ctx, "DiscountRequirement.HasOneProduct-7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisCache_DeleteSetting_Missing(t *testing.T) {
	cache, _ := newTestCache(t)

	// Deleting an absent key is not an error.
	err := cache.DeleteSetting(context.Background(), "no-such-setting")
	assert.NoError(t, err)
}

func TestRedisCache_HealthCheck(t *testing.T) {
	cache, srv := newTestCache(t)
	ctx := context.Background()

	// Healthy server responds to ping.
	require.NoError(t, cache.HealthCheck(ctx))

	// A stopped server fails the check.
	srv.Close()
	assert.Error(t, cache.HealthCheck(ctx))
}

func TestRedisCache_GetSetting_ServerDown(t *testing.T) {
	cache, srv := newTestCache(t)
	srv.Close()

	// Infrastructure failures surface as errors distinct from ErrNotFound.
	_, err := cache.GetSetting(context.Background(), "DiscountRequirement.HasOneProduct-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_SetGetDel(t *testing.T) {
	mem, err := NewMemoryCache(100, time.Minute)
	require.NoError(t, err)
	defer mem.Close()

	// Missing key
	_, found := mem.Get("DiscountRequirement.HasOneProduct-1")
	assert.False(t, found)

	// Set then get
	mem.Set("DiscountRequirement.HasOneProduct-1", "77, 123:2")
	got, found := mem.Get("DiscountRequirement.HasOneProduct-1")
	require.True(t, found)
	assert.Equal(t, "77, 123:2", got)

	// Empty string values are cacheable and distinguishable from misses.
	mem.Set("DiscountRequirement.HasOneProduct-2", "")
	got, found = mem.Get("DiscountRequirement.HasOneProduct-2")
	require.True(t, found)
	assert.Equal(t, "", got)

	// Delete
	mem.Del("DiscountRequirement.HasOneProduct-1")
	_, found = mem.Get("DiscountRequirement.HasOneProduct-1")
	assert.False(t, found)
}
