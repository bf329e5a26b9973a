package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/dancescene/discovery/internal/domain/entities"
	"github.com/dancescene/discovery/internal/domain/repositories"
	"github.com/dancescene/discovery/internal/infrastructure/observability"
	"github.com/dancescene/discovery/pkg/config"
	apperrors "github.com/dancescene/discovery/pkg/errors"
)

const (
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20

	// minSuggestQueryLen is in runes, not bytes
	minSuggestQueryLen = 2
)

// SuggestionService fans a prefix query out to the per-entity-type lookups.
// Each branch has its own time budget and circuit breaker; a failed branch
// degrades to an empty list instead of failing the whole response.
type SuggestionService struct {
	repo     repositories.SuggestionRepository
	metrics  *observability.Metrics
	cfg      config.SearchConfig
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewSuggestionService creates a new suggestion service. metrics may be nil.
func NewSuggestionService(repo repositories.SuggestionRepository, metrics *observability.Metrics, cfg config.SearchConfig) *SuggestionService {
	breakers := make(map[string]*gobreaker.CircuitBreaker, 3)
	for _, name := range []string{"suggest-events", "suggest-teachers", "suggest-musicians"} {
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("suggestion breaker state changed")
			},
		})
	}
	return &SuggestionService{
		repo:     repo,
		metrics:  metrics,
		cfg:      cfg,
		breakers: breakers,
	}
}

// Suggest returns autocomplete candidates for the query across events,
// teachers, musicians, and locations. Queries shorter than two runes get an
// empty (not nil) result without touching the store.
func (s *SuggestionService) Suggest(ctx context.Context, query string, limit int) (*entities.Suggestions, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSuggestQueryLen {
		return entities.EmptySuggestions(), nil
	}

	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	var (
		wg        sync.WaitGroup
		teachers  []string
		musicians []string

		teachersErr  error
		musiciansErr error
	)

	// The events branch goes first; its rows also feed the locations list.
	// The name branches fan out afterwards.
	events, eventsErr := s.runEvents(ctx, query, limit)

	wg.Add(2)
	go func() {
		defer wg.Done()
		teachers, teachersErr = s.runNames(ctx, "suggest-teachers", query, limit, s.repo.SuggestTeachers)
	}()
	go func() {
		defer wg.Done()
		musicians, musiciansErr = s.runNames(ctx, "suggest-musicians", query, limit, s.repo.SuggestMusicians)
	}()

	wg.Wait()

	if eventsErr != nil && teachersErr != nil && musiciansErr != nil {
		return nil, apperrors.NewStoreError("all suggestion branches failed", eventsErr)
	}

	result := &entities.Suggestions{
		Events:    []entities.EventSuggestion{},
		Teachers:  []string{},
		Musicians: []string{},
		Locations: []string{},
	}
	if eventsErr == nil {
		result.Events = events
		result.Locations = locationsFrom(events, limit)
	}
	if teachersErr == nil {
		result.Teachers = teachers
	}
	if musiciansErr == nil {
		result.Musicians = musicians
	}

	return result, nil
}

func (s *SuggestionService) runEvents(ctx context.Context, query string, limit int) ([]entities.EventSuggestion, error) {
	branchCtx, cancel := s.branchContext(ctx)
	defer cancel()

	out, err := s.breakers["suggest-events"].Execute(func() (interface{}, error) {
		return s.repo.SuggestEvents(branchCtx, query, limit)
	})
	if err != nil {
		log.Warn().Str("branch", "events").Err(err).Msg("suggestion branch degraded")
		observability.RecordSuggestFailure(ctx, s.metrics, "events")
		return nil, err
	}
	return out.([]entities.EventSuggestion), nil
}

func (s *SuggestionService) runNames(
	ctx context.Context,
	breaker, query string,
	limit int,
	lookup func(context.Context, string, int) ([]string, error),
) ([]string, error) {
	branchCtx, cancel := s.branchContext(ctx)
	defer cancel()

	out, err := s.breakers[breaker].Execute(func() (interface{}, error) {
		return lookup(branchCtx, query, limit)
	})
	if err != nil {
		log.Warn().Str("branch", breaker).Err(err).Msg("suggestion branch degraded")
		observability.RecordSuggestFailure(ctx, s.metrics, breaker)
		return nil, err
	}
	return out.([]string), nil
}

func (s *SuggestionService) branchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(s.cfg.SuggestTimeoutSeconds)*time.Second)
}

// locationsFrom derives deduplicated location labels from the matched events,
// preserving event order. Each event contributes its city, its country, and
// the "city, country" pair; the pair is skipped when the city is empty.
func locationsFrom(events []entities.EventSuggestion, limit int) []string {
	seen := make(map[string]struct{}, len(events))
	locations := []string{}
	add := func(label string) bool {
		if label == "" {
			return false
		}
		if _, ok := seen[label]; ok {
			return false
		}
		seen[label] = struct{}{}
		locations = append(locations, label)
		return len(locations) == limit
	}
	for _, ev := range events {
		labels := []string{ev.City, ev.Country}
		if ev.City != "" && ev.Country != "" {
			labels = append(labels, ev.City+", "+ev.Country)
		}
		for _, label := range labels {
			if add(label) {
				return locations
			}
		}
	}
	return locations
}
