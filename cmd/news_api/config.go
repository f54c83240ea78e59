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

type APIConfig struct {
	DatabaseURL string

	EmbeddingBaseURL string
	EmbeddingModel   string

	OpenAIEndpoint string
	OpenAIModel    string
	OpenAIAPIKey   string
}

func (as *AppConfig) Load() (*APIConfig, error) {
	if err := env.LoadDotEnv("cmd/news_api/.env"); err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	embBase := os.Getenv("EMBEDDING_BASE_URL")
	if embBase == "" {
		embBase = "http://localhost:11434"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &APIConfig{
		DatabaseURL:      dbURL,
		EmbeddingBaseURL: embBase,
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
		OpenAIEndpoint:   os.Getenv("OPENAI_ENDPOINT"),
		OpenAIModel:      model,
		OpenAIAPIKey:     apiKey,
	}, nil
}
