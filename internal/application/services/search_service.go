package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/providers"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/observability"
	"github.com/dancescene/discovery/internal/search"
	"github.com/dancescene/discovery/pkg/config"
)

// SearchService assembles search responses: it normalizes the filter,
// resolves the geo proximity set, runs the store query, and wraps the page
// in a pagination envelope whose total never depends on the page window.
type SearchService struct {
	searchRepo    repositories.EventSearchRepository
	proximityRepo repositories.VenueProximityRepository
	cache         providers.CacheProvider
	metrics       *observability.Metrics
	cfg           config.SearchConfig
}

// NewSearchService creates a new search service. cache and metrics may be
// nil; without a cache every request goes to the store.
func NewSearchService(
	searchRepo repositories.EventSearchRepository,
	proximityRepo repositories.VenueProximityRepository,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg config.SearchConfig,
) *SearchService {
	return &SearchService{
		searchRepo:    searchRepo,
		proximityRepo: proximityRepo,
		cache:         cache,
		metrics:       metrics,
		cfg:           cfg,
	}
}

// Search runs one search request end to end
func (s *SearchService) Search(ctx context.Context, filter repositories.EventFilter) (*entities.SearchResponse, error) {
	filter = s.normalize(filter)

	if err := search.Validate(filter); err != nil {
		return nil, err
	}

	cacheKey := searchCacheKey(filter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var response entities.SearchResponse
			decodeErr := json.Unmarshal(cached, &response)
			if decodeErr == nil {
				observability.RecordCacheHit(ctx, s.metrics, cacheKey)
				return &response, nil
			}
			log.Warn().Str("key", cacheKey).Err(decodeErr).Msg("discarding undecodable cached search response")
		}
		observability.RecordCacheMiss(ctx, s.metrics, cacheKey)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	// The proximity set is resolved independently of every other filter and
	// intersected in the store query.
	var proximity *entities.ProximitySet
	if filter.HasGeo() {
		var err error
		proximity, err = s.proximityRepo.ResolveProximity(ctx, *filter.Latitude, *filter.Longitude, filter.RadiusKm)
		if err != nil {
			return nil, err
		}
	}

	queryStart := time.Now()
	rows, totalCount, err := s.searchRepo.SearchWithCount(ctx, filter, proximity)
	if err != nil {
		return nil, err
	}
	observability.RecordSearchMetric(ctx, s.metrics, filter.SortBy, time.Since(queryStart))

	if proximity != nil {
		for _, row := range rows {
			if d, ok := proximity.Distance(row.VenueID); ok {
				distance := d
				row.DistanceKm = &distance
			}
		}
	}

	response := assemble(rows, totalCount, filter.Page, filter.PageSize)

	if s.cache != nil {
		go func() {
			if data, err := json.Marshal(response); err == nil {
				if err := s.cache.Set(context.Background(), cacheKey, data, s.cfg.CacheTTLSeconds); err != nil {
					log.Warn().Str("key", cacheKey).Err(err).Msg("failed to cache search response")
				}
			}
		}()
	}

	return response, nil
}

// normalize fills defaults and clamps the pagination window
func (s *SearchService) normalize(filter repositories.EventFilter) repositories.EventFilter {
	filter.Query = strings.TrimSpace(filter.Query)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.DefaultPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	if filter.SortBy == "" {
		filter.SortBy = repositories.SortRelevance
	}
	if filter.SortOrder == "" {
		filter.SortOrder = repositories.OrderAsc
	}

	return filter
}

func assemble(rows []*entities.SearchResultRow, totalCount, page, pageSize int) *entities.SearchResponse {
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	return &entities.SearchResponse{
		Rows:       rows,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		HasNext:    page*pageSize < totalCount,
		HasPrev:    page > 1,
	}
}

// searchCacheKey derives the cache key from the normalized filter, so two
// requests differing only in unset defaults share an entry.
func searchCacheKey(filter repositories.EventFilter) string {
	data, err := json.Marshal(filter)
	if err != nil {
		return fmt.Sprintf("search:events:page:%d:%d", filter.Page, filter.PageSize)
	}
	return "search:events:" + string(data)
}
