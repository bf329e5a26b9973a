package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dancescene/discovery/internal/adapters/cache"
	"github.com/dancescene/discovery/internal/adapters/database"
	"github.com/dancescene/discovery/internal/api/handlers"
	"github.com/dancescene/discovery/internal/api/routes"
	"github.com/dancescene/discovery/internal/application/services"
	"github.com/dancescene/discovery/internal/domain/providers"
	"github.com/dancescene/discovery/internal/infrastructure/clients/postgres"
	"github.com/dancescene/discovery/internal/infrastructure/clients/redis"
	"github.com/dancescene/discovery/internal/infrastructure/observability"
	"github.com/dancescene/discovery/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()

			metrics, err = observability.InitMetrics()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize metrics")
			}
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// The service degrades to uncached operation when Redis is unavailable
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("running without cache, Redis unavailable")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis client initialized")
	}

	searchRepo := database.NewEventSearchAdapter(pgClient)
	proximityRepo := database.NewVenueProximityAdapter(pgClient)
	suggestionRepo := database.NewSuggestionAdapter(pgClient)

	eventRepo := database.NewEventAdapter(pgClient)
	if cacheProvider != nil {
		eventRepo = database.NewCachedEventAdapter(eventRepo, cacheProvider)
	}

	searchService := services.NewSearchService(searchRepo, proximityRepo, cacheProvider, metrics, cfg.Search)
	suggestionService := services.NewSuggestionService(suggestionRepo, metrics, cfg.Search)

	searchHandler := handlers.NewSearchHandler(searchService, suggestionService)
	eventHandler := handlers.NewEventHandler(eventRepo)

	router := routes.NewRouter(searchHandler, eventHandler, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
