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

	"github.com/telecare/clinic-dashboard/backend/internal/adapters/cache"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/events"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/gateway"
	"github.com/telecare/clinic-dashboard/backend/internal/adapters/sessions"
	"github.com/telecare/clinic-dashboard/backend/internal/api/handlers"
	"github.com/telecare/clinic-dashboard/backend/internal/api/routes"
	"github.com/telecare/clinic-dashboard/backend/internal/application/services"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/providers"
	"github.com/telecare/clinic-dashboard/backend/internal/domain/repositories"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/postgres"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/clients/redis"
	"github.com/telecare/clinic-dashboard/backend/internal/infrastructure/observability"
	"github.com/telecare/clinic-dashboard/backend/internal/query"
	"github.com/telecare/clinic-dashboard/backend/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
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
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize Redis client. The dashboard degrades to in-process
	// caching and sessions when Redis is unavailable.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache and sessions")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Initialize the database client only for the self-hosted
	// gateway mode; the hosted and mock modes never touch Postgres.
	var pgClient *postgres.Client
	if cfg.Gateway.Mode == "postgres" {
		pgClient, err = postgres.NewClient(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		log.Info().Msg("PostgreSQL client initialized")
	}

	// Initialize the gateway
	gw, err := gateway.NewGateway(&cfg.Gateway, gateway.Deps{
		Postgres: pgClient,
		Metrics:  metrics,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gateway")
	}
	if mock, ok := gw.(*gateway.MockAdapter); ok {
		// Development credentials for the mock gateway.
		mock.RegisterUser(
			getEnvDefault("MOCK_LOGIN_EMAIL", "doctor@clinic.local"),
			getEnvDefault("MOCK_LOGIN_PASSWORD", "password"),
		)
		log.Info().Msg("mock gateway initialized with development credentials")
	}

	// Initialize cache provider, event bus and session store
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	var sessionStore repositories.SessionRepository
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		sessionStore = sessions.NewRedisStore(redisClient)
	} else {
		cacheProvider = cache.NewMemoryAdapter()
		eventBus = events.NewMemoryEventBus()
		sessionStore = sessions.NewMemoryStore()
	}

	// Initialize the query cache and invalidation listener
	queryCache := query.NewCache(cacheProvider, eventBus, metrics)

	invalidationService := services.NewCacheInvalidationService(eventBus, cacheProvider)
	if err := invalidationService.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to start cache invalidation listener")
	}

	// Initialize services

	sessionService := services.NewSessionService(gw, sessionStore, cfg.Session.DefaultTTL)
	rosterService := services.NewRosterService(gw, queryCache)
	schedulerService := services.NewSchedulerService(gw, queryCache, rosterService)
	consultationService := services.NewConsultationService()

	// Initialize handlers

	sessionHandler := handlers.NewSessionHandler(sessionService, consultationService, cfg.Session)
	patientHandler := handlers.NewPatientHandler(rosterService)
	appointmentHandler := handlers.NewAppointmentHandler(schedulerService)
	consultationHandler := handlers.NewConsultationHandler(consultationService)

	// Set up router

	router := routes.NewRouter(
		sessionHandler,
		patientHandler,
		appointmentHandler,
		consultationHandler,
		sessionService,
		cfg.Session.CookieName,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Str("gateway_mode", cfg.Gateway.Mode).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	invalidationService.Stop()

	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event bus")
	}

	log.Info().Msg("server stopped")
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
