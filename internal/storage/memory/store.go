// Package memory is an in-process store implementing the same contracts as
// the postgres backend. It backs unit tests and toy deployments; ordering and
// tie-break rules match the pg searcher bit for bit.
package memory

import (
	"bytes"
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
	"github.com/mpavlovic/news-digest/pkg/vecmath"
)

type Store struct {
	mu        sync.RWMutex
	articles  map[uuid.UUID]domain.Article
	links     map[string]uuid.UUID
	claimed   map[uuid.UUID]time.Time
	summaries map[uuid.UUID]domain.Summary
}

func NewStore() *Store {
	return &Store{
		articles:  make(map[uuid.UUID]domain.Article),
		links:     make(map[string]uuid.UUID),
		claimed:   make(map[uuid.UUID]time.Time),
		summaries: make(map[uuid.UUID]domain.Summary),
	}
}

func (s *Store) InsertArticle(_ context.Context, article domain.Article) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.links[article.Link]; ok {
		return existing, false, nil
	}

	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.PubDate.IsZero() {
		article.PubDate = time.Now().UTC()
	}

	s.articles[article.ID] = article
	s.links[article.Link] = article.ID
	return article.ID, true, nil
}

func (s *Store) GetArticle(_ context.Context, id uuid.UUID) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	return &article, nil
}

func (s *Store) ListArticles(_ context.Context, filter storage.ArticleFilter, opts storage.ListOptions) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filtered(filter)
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PubDate.Equal(matched[j].PubDate) {
			return matched[i].PubDate.After(matched[j].PubDate)
		}
		return lessID(matched[i].ID, matched[j].ID)
	})

	if opts.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (s *Store) CountArticles(_ context.Context, filter storage.ArticleFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filtered(filter))), nil
}

func (s *Store) filtered(filter storage.ArticleFilter) []domain.Article {
	var matched []domain.Article
	for _, a := range s.articles {
		if filter.Source != "" && a.Source != filter.Source {
			continue
		}
		if filter.Summarized != nil && a.Summarized != *filter.Summarized {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

func (s *Store) RandomUnconsumed(_ context.Context) (*domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var eligible []domain.Article
	for _, a := range s.articles {
		if a.Summarized {
			continue
		}
		if _, claimed := s.claimed[a.ID]; claimed {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	pick := eligible[rand.Intn(len(eligible))]
	return &pick, nil
}

func (s *Store) ClaimArticles(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		a, ok := s.articles[id]
		if !ok || a.Summarized {
			return storage.ErrClaimConflict
		}
		if _, claimed := s.claimed[id]; claimed {
			return storage.ErrClaimConflict
		}
	}

	now := time.Now().UTC()
	for _, id := range ids {
		s.claimed[id] = now
	}
	return nil
}

func (s *Store) ReleaseArticles(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.claimed, id)
	}
	return nil
}

func (s *Store) NearestArticles(_ context.Context, q storage.NearestQuery) ([]domain.ArticleMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[uuid.UUID]struct{}, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	type ranked struct {
		article  domain.Article
		distance float64
	}

	var hits []ranked
	for _, a := range s.articles {
		if q.Source != "" && a.Source != q.Source {
			continue
		}
		if q.ExcludeSource != "" && a.Source == q.ExcludeSource {
			continue
		}
		if q.UnconsumedOnly {
			if a.Summarized {
				continue
			}
			if _, claimed := s.claimed[a.ID]; claimed {
				continue
			}
		}
		if _, skip := excluded[a.ID]; skip {
			continue
		}

		dist, err := vecmath.CosineDistance(q.Vector, a.Embedding)
		if err != nil {
			return nil, err
		}
		hits = append(hits, ranked{article: a, distance: dist})
	}

	// Full ranking before any truncation.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return lessID(hits[i].article.ID, hits[j].article.ID)
	})

	if q.K != nil && len(hits) > *q.K {
		hits = hits[:*q.K]
	}

	matches := make([]domain.ArticleMatch, len(hits))
	for i, h := range hits {
		matches[i] = domain.ArticleMatch{
			Article:    h.article,
			Similarity: float32(1 - h.distance),
		}
	}
	return matches, nil
}

func (s *Store) NearestSummaries(_ context.Context, vector []float32, k int) ([]domain.SummaryMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		summary  domain.Summary
		distance float64
	}

	var hits []ranked
	for _, sum := range s.summaries {
		dist, err := vecmath.CosineDistance(vector, sum.Embedding)
		if err != nil {
			return nil, err
		}
		hits = append(hits, ranked{summary: sum, distance: dist})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return lessID(hits[i].summary.ID, hits[j].summary.ID)
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	matches := make([]domain.SummaryMatch, len(hits))
	for i, h := range hits {
		matches[i] = domain.SummaryMatch{
			Summary:    h.summary,
			Similarity: float32(1 - h.distance),
		}
	}
	return matches, nil
}

func (s *Store) SaveSummary(_ context.Context, summary domain.Summary, consume []uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if summary.ID == uuid.Nil {
		summary.ID = uuid.New()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	s.summaries[summary.ID] = summary
	for _, id := range consume {
		if a, ok := s.articles[id]; ok {
			a.Summarized = true
			s.articles[id] = a
		}
		delete(s.claimed, id)
	}
	return summary.ID, nil
}

func (s *Store) GetSummary(_ context.Context, id uuid.UUID) (*domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[id]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

func (s *Store) ListSummaries(_ context.Context, opts storage.ListOptions) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		all = append(all, sum)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return lessID(all[i].ID, all[j].ID)
	})

	if opts.Offset >= len(all) {
		return nil, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (s *Store) CountSummaries(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.summaries)), nil
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
