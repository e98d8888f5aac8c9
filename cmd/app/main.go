package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/wetter-proxy/internal/api"
	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/database"
	"github.com/alexivanou/wetter-proxy/internal/geocoding"
	"github.com/alexivanou/wetter-proxy/internal/repository"
	"github.com/alexivanou/wetter-proxy/internal/seeder"
	"github.com/alexivanou/wetter-proxy/internal/service"
	"github.com/alexivanou/wetter-proxy/internal/stats"
	"github.com/alexivanou/wetter-proxy/internal/weather"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if config.WeatherAPIKey() == "" {
		logger.Warn("WEATHER_API_KEY is not set, weather lookups will fail until it is")
	}

	weatherClient := weather.NewClient(
		cfg.Weather.BaseURL,
		config.WeatherAPIKey,
		&http.Client{Timeout: cfg.Weather.Timeout},
		logger,
	)

	var (
		provider geocoding.Provider
		db       *sqlx.DB
	)
	switch cfg.Geocoding.Provider {
	case config.GeocodingLocal:
		db, err = openGazetteer(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to prepare gazetteer", zap.Error(err))
		}
		defer db.Close()
		repos := repository.NewRepositories(db, cfg.DB.Type)
		provider = geocoding.NewLocalProvider(repos.City, cfg.Geocoding.Lang, cfg.Geocoding.Limit)
	default:
		if cfg.Geocoding.APIKey == "" {
			logger.Warn("GEOCODING_API_KEY is not set, suggestions will fail until it is")
		}
		provider = geocoding.NewGeoapifyClient(cfg.Geocoding, &http.Client{Timeout: cfg.Geocoding.Timeout}, logger)
	}
	logger.Info("Geocoding provider selected", zap.String("provider", string(cfg.Geocoding.Provider)))

	svc := service.NewService(weatherClient, provider, logger)
	statsCollector := stats.NewCollector(db, cfg.DB.Type)
	router := api.NewRouter(svc, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openGazetteer connects, migrates and seeds the local city database when it is empty
func openGazetteer(cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB.Type); err != nil {
		db.Close()
		return nil, err
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if !isEmpty {
		return db, nil
	}

	logger.Info("Database is empty, auto-seeding data...", zap.String("data_dir", cfg.Seeder.DataDir))
	repos := repository.NewRepositories(db, cfg.DB.Type)
	res, err := seeder.Seed(ctx, repos, seeder.NewParser(cfg.Seeder), logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Database seeded successfully", zap.Int("cities", res.Cities))
	return db, nil
}
