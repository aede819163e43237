package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"webar-backend/internal/logutils"
	"webar-backend/internal/models"
)

const viewKeyPrefix = "webar:view:" // cached public view payload per project id

// ProjectViewCache keeps public-resolver payloads in Redis for the AR
// viewer's hot path. Every miss or Redis failure falls through to the
// database, so the cache is never load-bearing.
type ProjectViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProjectViewCache(client *redis.Client, ttl time.Duration) *ProjectViewCache {
	return &ProjectViewCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *ProjectViewCache) Get(ctx context.Context, projectID string) (*models.PublicProjectResponse, bool) {
	data, err := c.client.Get(ctx, viewKeyPrefix+projectID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logutils.Log.WithError(err).Warn("view cache read failed")
		}
		return nil, false
	}

	var view models.PublicProjectResponse
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, false
	}
	return &view, true
}

func (c *ProjectViewCache) Set(ctx context.Context, projectID string, view *models.PublicProjectResponse) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, viewKeyPrefix+projectID, data, c.ttl).Err(); err != nil {
		logutils.Log.WithError(err).Warn("view cache write failed")
	}
}

func (c *ProjectViewCache) Invalidate(ctx context.Context, projectID string) {
	if err := c.client.Del(ctx, viewKeyPrefix+projectID).Err(); err != nil {
		logutils.Log.WithError(err).Warn("view cache invalidation failed")
	}
}
