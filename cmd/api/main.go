// Package main provides the entrypoint for the Wanderplan engine API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/api"
	"github.com/wanderplan/wanderplan/internal/database"
	"github.com/wanderplan/wanderplan/internal/draft"
	"github.com/wanderplan/wanderplan/internal/generation"
	"github.com/wanderplan/wanderplan/internal/itinerary"
	"github.com/wanderplan/wanderplan/internal/keystore"
	"github.com/wanderplan/wanderplan/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "wanderplan-engine"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Wanderplan engine")

	port := getEnvOrDefault("APP_PORT", "8080")
	env := getEnvOrDefault("APP_ENV", "development")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// Select the key-value backend
	store, cleanup, err := newKeystore(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize key-value store")
	}
	defer cleanup()

	// Construct the engine and load any persisted state before serving
	builder := draft.NewBuilder(draft.BuilderConfig{
		Store:  store,
		Logger: log,
	})
	if err := builder.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("continuing with default draft")
	}

	itineraryStore := itinerary.NewStore(itinerary.StoreConfig{
		Store:  store,
		Logger: log,
	})
	if _, err := itineraryStore.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("continuing with empty itinerary store")
	}
	log.Info().Msg("trip engine initialized")

	generator := generation.NewClient(generation.ClientConfig{
		BaseURL: os.Getenv("GENERATION_BASE_URL"),
		APIKey:  os.Getenv("GENERATION_API_KEY"),
		Logger:  log,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		DraftBuilder:   builder,
		ItineraryStore: itineraryStore,
		Generator:      generator,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Flush the draft on the way out; losing it is tolerated
	if err := builder.Save(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("draft not flushed on shutdown")
	}

	log.Info().Msg("server stopped")
}

// newKeystore builds the key-value store selected by KV_BACKEND
// (memory, redis, or postgres).
func newKeystore(ctx context.Context, log zerolog.Logger) (keystore.Store, func(), error) {
	backend := getEnvOrDefault("KV_BACKEND", "memory")

	switch backend {
	case "redis":
		client, err := keystore.ConnectRedis(ctx, getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"))
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("redis key-value store connected")
		return keystore.NewRedisStore(client), func() { _ = client.Close() }, nil

	case "postgres":
		cfg := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info().
			Str("host", cfg.Host).
			Str("database", cfg.Database).
			Msg("postgres key-value store connected")
		return keystore.NewPostgresStore(pool), pool.Close, nil

	default:
		log.Info().Msg("using in-memory key-value store")
		return keystore.NewMemoryStore(), func() {}, nil
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
