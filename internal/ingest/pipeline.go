package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/domain"
)

type ArticleInserter interface {
	InsertArticle(ctx context.Context, article domain.Article) (uuid.UUID, bool, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Result reports what one pipeline run did. Duplicates are links already in
// storage; Failed counts insert errors, which do not abort the run.
type Result struct {
	Read       int
	Inserted   int
	Duplicates int
	Failed     int
}

// Pipeline embeds and inserts normalized records. Runs are synchronous, the
// caller sees the full result before the process exits.
type Pipeline struct {
	store    ArticleInserter
	embedder Embedder
}

func NewPipeline(store ArticleInserter, embedder Embedder) *Pipeline {
	return &Pipeline{
		store:    store,
		embedder: embedder,
	}
}

func (p *Pipeline) RunRecords(ctx context.Context, records []RawRecord) (Result, error) {
	var res Result
	for _, raw := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Read++

		article := Normalize(raw, time.Now().UTC())
		article.Embedding = p.embedder.Embed(ctx, article.Content)

		_, inserted, err := p.store.InsertArticle(ctx, article)
		if err != nil {
			slog.Error("Failed to insert article", "link", article.Link, "error", err)
			res.Failed++
			continue
		}
		if !inserted {
			res.Duplicates++
			continue
		}
		res.Inserted++
	}
	return res, nil
}

// RunCSV imports one source's CSV dump using its configured column mapping.
func (p *Pipeline) RunCSV(ctx context.Context, source SourceConfig, file io.Reader) (Result, error) {
	if source.CSV == nil {
		return Result{}, fmt.Errorf("source %q has no csv config", source.Name)
	}

	rows, err := NewCSVReader(file).Read()
	if err != nil {
		return Result{}, fmt.Errorf("source %q: %w", source.Name, err)
	}

	records := make([]RawRecord, len(rows))
	for i, row := range rows {
		records[i] = RawRecord{
			Source:  source.Name,
			Title:   row[source.CSV.TitleColumn],
			Link:    row[source.CSV.LinkColumn],
			PubDate: row[source.CSV.DateColumn],
			Content: row[source.CSV.ContentColumn],
		}
	}

	res, err := p.RunRecords(ctx, records)
	if err != nil {
		return res, err
	}

	slog.Info("Imported source",
		"source", source.Name, "read", res.Read, "inserted", res.Inserted,
		"duplicates", res.Duplicates, "failed", res.Failed)

	return res, nil
}

// RunCollector imports whatever a live collector currently serves.
func (p *Pipeline) RunCollector(ctx context.Context, collector Collector) (Result, error) {
	records, err := collector.FetchAndNormalize(ctx)
	if err != nil {
		return Result{}, err
	}
	return p.RunRecords(ctx, records)
}
