package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/mpavlovic/news-digest/internal/embedding"
	"github.com/mpavlovic/news-digest/internal/ingest"
	"github.com/mpavlovic/news-digest/internal/storage/pg"
)

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manifestFile, err := os.Open(cfg.ManifestPath)
	if err != nil {
		slog.Error("Failed to open manifest", "path", cfg.ManifestPath, "error", err)
		os.Exit(1)
	}
	manifest, err := ingest.LoadManifest(manifestFile)
	_ = manifestFile.Close()
	if err != nil {
		slog.Error("Failed to load manifest", "error", err)
		os.Exit(1)
	}

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.DatabaseURL})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var embedderOpts []embedding.EmbedderOption
	if cfg.EmbeddingModel != "" {
		embedderOpts = append(embedderOpts, embedding.WithModel(cfg.EmbeddingModel))
	}
	embedder := embedding.NewEmbedder(func() (embedding.Client, error) {
		return embedding.NewOllamaClient(cfg.EmbeddingBaseURL)
	}, embedderOpts...)

	pipeline := ingest.NewPipeline(pg.NewArticleStore(pool), embedder)

	var total ingest.Result
	failed := false
	for _, source := range manifest.Sources {
		res, err := runSource(ctx, pipeline, cfg.ManifestPath, source)
		if err != nil {
			slog.Error("Source import failed", "source", source.Name, "error", err)
			failed = true
			continue
		}
		total.Read += res.Read
		total.Inserted += res.Inserted
		total.Duplicates += res.Duplicates
		total.Failed += res.Failed
	}

	slog.Info("Import finished",
		"read", total.Read, "inserted", total.Inserted,
		"duplicates", total.Duplicates, "failed", total.Failed)

	if failed || total.Failed > 0 {
		os.Exit(1)
	}
}

func runSource(ctx context.Context, pipeline *ingest.Pipeline, manifestPath string, source ingest.SourceConfig) (ingest.Result, error) {
	if source.Feed != nil {
		collector := ingest.NewFeedCollector(source.Name, *source.Feed)
		return pipeline.RunCollector(ctx, collector)
	}

	// CSV paths are relative to the manifest file.
	path := source.CSV.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(manifestPath), path)
	}

	file, err := os.Open(path)
	if err != nil {
		return ingest.Result{}, err
	}
	defer file.Close()

	return pipeline.RunCSV(ctx, source, file)
}
