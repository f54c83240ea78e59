package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mpavlovic/news-digest/pkg/config/env"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type DataImportConfig struct {
	DatabaseURL  string
	ManifestPath string

	EmbeddingBaseURL string
	EmbeddingModel   string
}

func (as *AppConfig) Load() (*DataImportConfig, error) {
	if err := env.LoadDotEnv("cmd/data_import/.env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	manifestPath := os.Getenv("MANIFEST_PATH")
	if manifestPath == "" {
		return nil, fmt.Errorf("MANIFEST_PATH environment variable is not set")
	}

	embBase := os.Getenv("EMBEDDING_BASE_URL")
	if embBase == "" {
		embBase = "http://localhost:11434"
	}

	return &DataImportConfig{
		DatabaseURL:      dbURL,
		ManifestPath:     manifestPath,
		EmbeddingBaseURL: embBase,
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
	}, nil
}
