package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/services"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	productListCachePrefix = "catalog:list:v"
	cacheVersionKey        = "catalog:list:version"
)

// CacheManager caches storefront listing pages in Redis. Invalidation bumps a
// version counter so every existing key goes stale at once; stale entries age
// out through the TTL.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(redis *redis.Client) *CacheManager {
	return &CacheManager{redis: redis, ttl: DefaultCacheTTL}
}

// GetProductList retrieves a cached listing page, if present.
func (cm *CacheManager) GetProductList(ctx context.Context, f services.ProductListFilters) (*services.ProductListResult, bool) {
	if cm.redis == nil {
		return nil, false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cached, err := cm.redis.Get(ctx, cm.listCacheKey(version, f)).Result()
	if err != nil {
		return nil, false
	}

	var result services.ProductListResult
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		zap.L().Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, false
	}
	return &result, true
}

// SetProductListAsync caches a listing page without blocking the request.
func (cm *CacheManager) SetProductListAsync(f services.ProductListFilters, result *services.ProductListResult) {
	if cm.redis == nil {
		return
	}
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}
		payload, err := json.Marshal(result)
		if err != nil {
			zap.L().Warn("Failed to marshal product list for cache", zap.Error(err))
			return
		}
		if err := cm.redis.Set(bgCtx, cm.listCacheKey(version, f), payload, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

// Invalidate makes every cached listing page stale by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) error {
	if cm.redis == nil {
		return nil
	}
	newVersion, err := cm.redis.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	zap.L().Info("Listing cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	ver, err := cm.redis.Get(ctx, cacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err == redis.Nil {
		if err := cm.redis.Set(ctx, cacheVersionKey, 1, 0).Err(); err == nil {
			return 1, nil
		}
	}
	return 0, err
}

// listCacheKey hashes the filter set so free-text values cannot collide with
// the key's own separators or blow up the key length.
func (cm *CacheManager) listCacheKey(version int64, f services.ProductListFilters) string {
	payload := fmt.Sprintf("%q|%q|%q|%q|%q|%q|%q|%q|%d|%d|%t",
		f.Query, f.Category, f.Brand, f.Tag, f.Price, f.Rating, f.Stock, f.Sort,
		f.Page, f.PageSize, f.PublishedOnly,
	)
	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%s%d:%x", productListCachePrefix, version, sum)
}
