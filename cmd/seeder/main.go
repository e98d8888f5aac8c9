package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/wetter-proxy/internal/config"
	"github.com/alexivanou/wetter-proxy/internal/database"
	"github.com/alexivanou/wetter-proxy/internal/repository"
	"github.com/alexivanou/wetter-proxy/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		dataDir = flag.String("data", "", "Directory with GeoNames dumps (overrides SEEDER_DATA_DIR)")
		reset   = flag.Bool("reset", false, "Delete existing gazetteer rows before importing")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *dataDir != "" {
		cfg.Seeder.DataDir = *dataDir
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB.Type); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if *reset {
		logger.Info("Clearing existing gazetteer data")
		for _, table := range []string{"city_translations", "country_translations", "cities", "countries"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				logger.Fatal("Failed to clear table", zap.String("table", table), zap.Error(err))
			}
		}
	}

	logger.Info("Starting data import...", zap.String("data_dir", cfg.Seeder.DataDir))
	repos := repository.NewRepositories(db, cfg.DB.Type)
	res, err := seeder.Seed(ctx, repos, seeder.NewParser(cfg.Seeder), logger)
	if err != nil {
		logger.Fatal("Data import failed", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("countries", res.Countries),
		zap.Int("cities", res.Cities),
		zap.Int("city_translations", res.CityTranslations),
		zap.Int("country_translations", res.CountryTranslations),
	)
}
