// Package sampler selects diversified candidate sets for summarization:
// topically anchored on one unconsumed seed article, spanning multiple
// outlets, one representative per outlet.
package sampler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/apperr"
	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
)

const (
	// defaultNeighborK is how many nearest unconsumed neighbors are pulled
	// around the seed before the per-source dedup walk.
	defaultNeighborK = 5

	// minExtraSources is the number of distinct sources, beyond the seed's
	// own, required to call a sample diverse.
	minExtraSources = 2
)

type ArticlePool interface {
	RandomUnconsumed(ctx context.Context) (*domain.Article, error)
}

type Sampler struct {
	pool      ArticlePool
	searcher  storage.ArticleSearcher
	neighborK int
}

type Option func(*Sampler)

func WithNeighborK(k int) Option {
	return func(s *Sampler) {
		s.neighborK = k
	}
}

func New(pool ArticlePool, searcher storage.ArticleSearcher, opts ...Option) *Sampler {
	s := &Sampler{
		pool:      pool,
		searcher:  searcher,
		neighborK: defaultNeighborK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleDiverseSet picks a random unconsumed seed, pulls its k nearest
// unconsumed neighbors, and keeps the nearest representative of each source
// not yet in the set (the seed's source counts as taken). The neighbor pool
// must span at least two sources other than the seed's, otherwise the sample
// is rejected as insufficiently diverse.
func (s *Sampler) SampleDiverseSet(ctx context.Context) ([]domain.Article, error) {
	seed, err := s.pool.RandomUnconsumed(ctx)
	if err != nil {
		return nil, apperr.NewStorage("random article pick", err)
	}
	if seed == nil {
		return nil, apperr.NewNoCandidates("no unconsumed articles available")
	}

	k := s.neighborK
	neighbors, err := s.searcher.NearestArticles(ctx, storage.NearestQuery{
		Vector:         seed.Embedding,
		K:              &k,
		UnconsumedOnly: true,
		ExcludeIDs:     []uuid.UUID{seed.ID},
	})
	if err != nil {
		return nil, apperr.NewStorage("nearest neighbor query", err)
	}

	extraSources := make(map[string]struct{})
	for _, n := range neighbors {
		if n.Source != seed.Source {
			extraSources[n.Source] = struct{}{}
		}
	}
	if len(extraSources) < minExtraSources {
		return nil, apperr.NewInsufficientDiversity(fmt.Sprintf(
			"need articles from at least %d sources besides %q, found %d",
			minExtraSources, seed.Source, len(extraSources)))
	}

	// Nearest-first walk, one article per source. Keeps topical cohesion
	// high while preventing any single outlet from dominating the sample
	// with near-duplicate wire copy.
	picked := []domain.Article{*seed}
	taken := map[string]struct{}{seed.Source: {}}
	for _, n := range neighbors {
		if _, ok := taken[n.Source]; ok {
			continue
		}
		taken[n.Source] = struct{}{}
		picked = append(picked, n.Article)
	}

	slog.Info("Sampled diverse article set",
		"seed", seed.ID, "seed_source", seed.Source,
		"size", len(picked), "sources", len(taken))

	return picked, nil
}
