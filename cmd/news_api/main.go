package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/mpavlovic/news-digest/internal/digest"
	"github.com/mpavlovic/news-digest/internal/embedding"
	"github.com/mpavlovic/news-digest/internal/router"
	"github.com/mpavlovic/news-digest/internal/sampler"
	"github.com/mpavlovic/news-digest/internal/server"
	"github.com/mpavlovic/news-digest/internal/storage/pg"
	"github.com/mpavlovic/news-digest/internal/summarizer"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load server config", "error", err)
		os.Exit(1)
	}

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.DatabaseURL})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	articleStore := pg.NewArticleStore(pool)
	summaryStore := pg.NewSummaryStore(pool)
	searcher := pg.NewSearcher(pool)

	var embedderOpts []embedding.EmbedderOption
	if cfg.EmbeddingModel != "" {
		embedderOpts = append(embedderOpts, embedding.WithModel(cfg.EmbeddingModel))
	}
	embedder := embedding.NewEmbedder(func() (embedding.Client, error) {
		return embedding.NewOllamaClient(cfg.EmbeddingBaseURL)
	}, embedderOpts...)

	chatClient, err := summarizer.NewOpenAIClient(summarizer.OpenAIConfig{
		Endpoint: cfg.OpenAIEndpoint,
		Model:    cfg.OpenAIModel,
		APIKey:   cfg.OpenAIAPIKey,
	})
	if err != nil {
		slog.Error("Failed to create chat client", "error", err)
		os.Exit(1)
	}
	engine := summarizer.NewEngine(chatClient)

	digestService := digest.NewService(
		sampler.New(articleStore, searcher),
		engine,
		embedder,
		articleStore,
		summaryStore,
	)

	s := server.NewServer(echo.New(), sCfg, pg.NewHealthChecker(pool))

	router.NewSearchRouter(s.Echo, embedder, searcher).Bind()
	router.NewArticleRouter(s.Echo, articleStore).Bind()
	router.NewSummaryRouter(s.Echo, digestService, summaryStore, searcher, embedder).Bind()

	if err := s.Start(); err != nil {
		s.Echo.Logger.Error("Failed to start server: ", err)
		os.Exit(1)
	}
}
