package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	settingsPageSizeKey = "settings:default_page_size"
	settingsCacheTTL    = 5 * time.Minute

	// FallbackPageSize applies when the settings document has never been
	// written.
	FallbackPageSize = 9
)

// SettingsService serves storefront configuration through an explicit Redis
// cache: reads go through the cache with a TTL, writes refresh it in place.
type SettingsService struct {
	repo     repository.SettingsRepo
	cache    *redis.Client
	fallback int
}

func NewSettingsService(repo repository.SettingsRepo, cache *redis.Client) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, fallback: FallbackPageSize}
}

// DefaultPageSize returns the configured listing page size, falling back to
// the hardcoded default when no settings document exists. Cache misses and
// Redis outages degrade to a direct read, never to a failure.
func (s *SettingsService) DefaultPageSize(ctx context.Context) int {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, settingsPageSizeKey).Int(); err == nil && cached > 0 {
			return cached
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			zap.L().Warn("Failed to load settings, using fallback page size", zap.Error(err))
		}
		return s.fallback
	}

	size := settings.DefaultPageSize
	if size <= 0 {
		size = s.fallback
	}
	s.cachePageSize(ctx, size)
	return size
}

// Get returns the settings document, synthesizing defaults when unset.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Settings{DefaultPageSize: s.fallback}, nil
	}
	return settings, err
}

// Update persists the settings and refreshes the cache wholesale, so readers
// see the new values without waiting out the TTL.
func (s *SettingsService) Update(ctx context.Context, settings *models.Settings) error {
	if settings.DefaultPageSize <= 0 {
		settings.DefaultPageSize = s.fallback
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return err
	}
	s.cachePageSize(ctx, settings.DefaultPageSize)
	return nil
}

func (s *SettingsService) cachePageSize(ctx context.Context, size int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, settingsPageSizeKey, strconv.Itoa(size), settingsCacheTTL).Err(); err != nil {
		zap.L().Warn("Failed to cache page size", zap.Error(err))
	}
}
