package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dreschagin/uptime-dashboard/internal/application/port"
	"github.com/dreschagin/uptime-dashboard/internal/domain/entity"
	"github.com/dreschagin/uptime-dashboard/internal/domain/repository"
	"github.com/dreschagin/uptime-dashboard/internal/domain/valueobject"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

const historyCachePrefix = "uptime:history"

// CachedHistorySource wraps a history repository with a cache-aside layer.
// Failed fetches are never cached; health is always fetched live.
type CachedHistorySource struct {
	source repository.HistoryRepository
	cache  port.Cache
	logger *logger.Logger
}

func NewCachedHistorySource(source repository.HistoryRepository, cache port.Cache, log *logger.Logger) *CachedHistorySource {
	return &CachedHistorySource{source: source, cache: cache, logger: log}
}

func (s *CachedHistorySource) FetchHistory(ctx context.Context, query valueobject.HistoryQuery) (*entity.HistorySnapshot, error) {
	if s.cache == nil {
		return s.source.FetchHistory(ctx, query)
	}

	key := HistoryCacheKey(query)

	var cached entity.HistorySnapshot
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		s.logger.Debug("Cache hit for history", "key", key, "sites", len(cached.Sites))
		return &cached, nil
	}
	if !errors.Is(err, port.ErrCacheMiss) {
		s.logger.Warn("History cache read failed", "key", key, "error", err.Error())
	}

	snapshot, err := s.source.FetchHistory(ctx, query)
	if err != nil {
		return nil, err
	}

	// async so the caller does not wait on the cache round trip
	go func() {
		if err := s.cache.Set(context.Background(), key, snapshot); err != nil {
			s.logger.Warn("Failed to cache history", "key", key, "error", err.Error())
		}
	}()

	return snapshot, nil
}

func (s *CachedHistorySource) FetchHealth(ctx context.Context) ([]entity.SiteHealth, error) {
	return s.source.FetchHealth(ctx)
}

// HistoryCacheKey is independent of the order sites were selected in.
func HistoryCacheKey(query valueobject.HistoryQuery) string {
	sites := query.Sites()
	sort.Strings(sites)
	return fmt.Sprintf("%s:%s:%s:%s", historyCachePrefix, strings.Join(sites, ","), query.StartParam(), query.EndParam())
}

// InvalidateHistoryCache drops every cached history response.
func InvalidateHistoryCache(ctx context.Context, cache port.Cache) error {
	if cache == nil {
		return nil
	}
	return cache.DeletePattern(ctx, historyCachePrefix+":*")
}
