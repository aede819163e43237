package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webar-backend/internal/cache"
	"webar-backend/internal/models"
)

func setupCache(t *testing.T) (*cache.ProjectViewCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewProjectViewCache(client, time.Minute), mr
}

func TestProjectViewCache_RoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	view := &models.PublicProjectResponse{
		Name:       "Showroom",
		AssetType:  models.AssetTypeModel,
		ModelURL:   "https://cdn.example.com/model.glb",
		MarkerType: models.MarkerTypeQR,
	}
	c.Set(ctx, "project-1", view)

	got, ok := c.Get(ctx, "project-1")
	require.True(t, ok)
	assert.Equal(t, view, got)
}

func TestProjectViewCache_Miss(t *testing.T) {
	c, _ := setupCache(t)

	_, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestProjectViewCache_Invalidate(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, "project-1", &models.PublicProjectResponse{Name: "Showroom"})
	c.Invalidate(ctx, "project-1")

	_, ok := c.Get(ctx, "project-1")
	assert.False(t, ok)
}

func TestProjectViewCache_Expiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, "project-1", &models.PublicProjectResponse{Name: "Showroom"})
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "project-1")
	assert.False(t, ok)
}
