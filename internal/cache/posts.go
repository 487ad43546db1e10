package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/foodshare/foodshare/internal/models"
	"github.com/foodshare/foodshare/pkg/logging"
)

const postCatalogKey = "posts:catalog"

// PostCatalog caches the full post list. Posts are immutable, so the only
// invalidation point is post creation. Claim totals are never cached.
type PostCatalog struct {
	cache  *Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewPostCatalog wraps c; a nil c yields a catalog that always misses
func NewPostCatalog(c *Cache, ttl time.Duration) *PostCatalog {
	return &PostCatalog{
		cache:  c,
		ttl:    ttl,
		logger: logging.WithComponent("post-catalog"),
	}
}

// Get returns the cached posts, or ok=false on miss, disabled cache or decode failure
func (p *PostCatalog) Get(ctx context.Context) ([]*models.Post, bool) {
	raw, err := p.cache.Get(ctx, postCatalogKey)
	if err != nil {
		if !errors.Is(err, ErrMiss) && !errors.Is(err, ErrCacheDisabled) {
			p.logger.Warn("Post catalog read failed", zap.Error(err))
		}
		return nil, false
	}

	var posts []*models.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		p.logger.Warn("Post catalog decode failed", zap.Error(err))
		return nil, false
	}
	return posts, true
}

// Put stores the post list
func (p *PostCatalog) Put(ctx context.Context, posts []*models.Post) {
	data, err := json.Marshal(posts)
	if err != nil {
		p.logger.Warn("Post catalog encode failed", zap.Error(err))
		return
	}
	if err := p.cache.Set(ctx, postCatalogKey, data, p.ttl); err != nil && !errors.Is(err, ErrCacheDisabled) {
		p.logger.Warn("Post catalog write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list
func (p *PostCatalog) Invalidate(ctx context.Context) {
	if err := p.cache.Delete(ctx, postCatalogKey); err != nil && !errors.Is(err, ErrCacheDisabled) {
		p.logger.Warn("Post catalog invalidation failed", zap.Error(err))
	}
}
