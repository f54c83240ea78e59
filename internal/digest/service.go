// Package digest orchestrates the full summary generation flow: sample a
// diverse article set, claim it, summarize it, and persist the result while
// consuming the inputs.
package digest

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/apperr"
	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
	"github.com/mpavlovic/news-digest/internal/summarizer"
)

type Sampler interface {
	SampleDiverseSet(ctx context.Context) ([]domain.Article, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, articles []summarizer.ArticleInput) (*summarizer.Draft, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

type Service struct {
	sampler   Sampler
	engine    Summarizer
	embedder  Embedder
	articles  storage.ArticleStore
	summaries storage.SummaryStore
}

func NewService(
	sampler Sampler,
	engine Summarizer,
	embedder Embedder,
	articles storage.ArticleStore,
	summaries storage.SummaryStore,
) *Service {
	return &Service{
		sampler:   sampler,
		engine:    engine,
		embedder:  embedder,
		articles:  articles,
		summaries: summaries,
	}
}

// GenerateDigest runs one summarization round. The sampled articles are
// claimed before the model call so two concurrent rounds can never consume
// the same article; a lost claim race surfaces as NoCandidatesError. When
// summarization fails the claims are released and nothing is persisted.
func (s *Service) GenerateDigest(ctx context.Context) (*domain.Summary, error) {
	sampled, err := s.sampler.SampleDiverseSet(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(sampled))
	inputs := make([]summarizer.ArticleInput, len(sampled))
	for i, a := range sampled {
		ids[i] = a.ID
		inputs[i] = summarizer.ArticleInput{
			ID:      a.ID,
			Title:   a.Title,
			Content: a.Content,
		}
	}

	if err := s.articles.ClaimArticles(ctx, ids); err != nil {
		if errors.Is(err, storage.ErrClaimConflict) {
			return nil, apperr.NewNoCandidates("sampled articles were consumed by a concurrent digest")
		}
		return nil, apperr.NewStorage("claim articles", err)
	}

	draft, err := s.engine.Summarize(ctx, inputs)
	if err != nil {
		s.release(ctx, ids)
		return nil, err
	}

	refs := make([]domain.Ref, len(draft.Refs))
	for i, r := range draft.Refs {
		refs[i] = domain.Ref{Sentence: r.Sentence, ArticleID: r.ArticleID}
	}

	summary := domain.Summary{
		Title:      draft.Title,
		TLDR:       draft.TLDR,
		Summary:    draft.Summary,
		ArticleIDs: ids,
		Refs:       refs,
		Embedding:  s.embedder.Embed(ctx, draft.Title+" "+draft.Summary),
	}

	id, err := s.summaries.SaveSummary(ctx, summary, ids)
	if err != nil {
		s.release(ctx, ids)
		return nil, apperr.NewStorage("save summary", err)
	}

	saved, err := s.summaries.GetSummary(ctx, id)
	if err != nil {
		return nil, apperr.NewStorage("load saved summary", err)
	}

	slog.Info("Generated digest", "summary_id", id, "articles", len(ids))

	return saved, nil
}

// release clears claims after a failed round. It runs even when the caller's
// context is already cancelled, otherwise the articles would stay locked.
func (s *Service) release(ctx context.Context, ids []uuid.UUID) {
	if err := s.articles.ReleaseArticles(context.WithoutCancel(ctx), ids); err != nil {
		slog.Error("Failed to release claimed articles", "error", err, "articles", len(ids))
	}
}
