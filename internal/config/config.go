package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	DBDSN       string
	Environment string
	HTTPAddr    string
	Storage     string // postgres | memory
	SeedOnStart bool
	SeedDays    int
}

func Load() (*Config, error) {
	// Load .env if present; plain environment variables work too.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		Environment: os.Getenv("ENV"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		Storage:     os.Getenv("STORAGE"),
		SeedOnStart: os.Getenv("SEED_ON_START") == "true",
		SeedDays:    19,
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Storage == "" {
		cfg.Storage = StoragePostgres
	}

	if v := os.Getenv("SEED_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("SEED_DAYS must be a positive integer, got %q", v)
		}
		cfg.SeedDays = days
	}

	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	return cfg, nil
}
