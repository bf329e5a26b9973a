package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/providers"
	"github.com/dancescene/discovery/internal/domain/repositories"
)

// CachedEventAdapter wraps EventAdapter with caching
type CachedEventAdapter struct {
	adapter repositories.EventRepository
	cache   providers.CacheProvider
}

// NewCachedEventAdapter creates a new cached event adapter
func NewCachedEventAdapter(adapter repositories.EventRepository, cache providers.CacheProvider) repositories.EventRepository {
	return &CachedEventAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// eventDetailTTL is in seconds. Event detail changes rarely; 5 minutes of
// staleness is acceptable.
const eventDetailTTL = 300

func eventCacheKey(id string) string {
	return fmt.Sprintf("event:%s", id)
}

// GetByID retrieves an event with caching. Not-found results are not
// cached, so a newly activated event appears immediately.
func (a *CachedEventAdapter) GetByID(ctx context.Context, id string) (*entities.EventDetail, error) {
	cacheKey := eventCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var detail entities.EventDetail
		if err := json.Unmarshal(cached, &detail); err == nil {
			return &detail, nil
		}
		log.Warn().Str("key", cacheKey).Err(err).Msg("discarding undecodable cached event")
	}

	detail, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Fill asynchronously to keep the fetch off the response path
	go func() {
		if data, err := json.Marshal(detail); err == nil {
			if err := a.cache.Set(context.Background(), cacheKey, data, eventDetailTTL); err != nil {
				log.Warn().Str("key", cacheKey).Err(err).Msg("failed to cache event")
			}
		}
	}()

	return detail, nil
}
