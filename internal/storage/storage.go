package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/domain"
)

// ErrClaimConflict is returned when a claim cannot cover every requested
// article, typically because a concurrent summarization flow got there first.
var ErrClaimConflict = errors.New("articles already claimed or consumed")

// NearestQuery describes a similarity lookup. Filters apply before ranking;
// ranking is ascending cosine distance with ascending id as the tie-break,
// and truncation to K happens only after the full ranking.
type NearestQuery struct {
	Vector []float32

	// K limits the result after ranking. nil returns all matches ranked.
	K *int

	// Source restricts matches to one source when non-empty.
	Source string

	// ExcludeSource drops matches from one source when non-empty.
	ExcludeSource string

	// UnconsumedOnly drops summarized and currently claimed articles.
	UnconsumedOnly bool

	// ExcludeIDs drops specific articles, e.g. the sampling seed itself.
	ExcludeIDs []uuid.UUID
}

// ArticleSearcher is the similarity query primitive over stored articles.
// An empty result is valid, not an error.
type ArticleSearcher interface {
	NearestArticles(ctx context.Context, q NearestQuery) ([]domain.ArticleMatch, error)
}

// SummarySearcher ranks stored summaries against a query vector.
type SummarySearcher interface {
	NearestSummaries(ctx context.Context, vector []float32, k int) ([]domain.SummaryMatch, error)
}

// ArticleFilter narrows listing and counting queries.
type ArticleFilter struct {
	Source     string
	Summarized *bool
}

type ListOptions struct {
	Limit  int
	Offset int
}

type ArticleStore interface {
	// InsertArticle persists an article, assigning an id when absent.
	// A duplicate link is a no-op: inserted is false and no error is returned.
	InsertArticle(ctx context.Context, article domain.Article) (id uuid.UUID, inserted bool, err error)
	GetArticle(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	ListArticles(ctx context.Context, filter ArticleFilter, opts ListOptions) ([]domain.Article, error)
	CountArticles(ctx context.Context, filter ArticleFilter) (int64, error)

	// RandomUnconsumed picks one article uniformly at random among articles
	// that are neither summarized nor claimed. Returns (nil, nil) when none.
	RandomUnconsumed(ctx context.Context) (*domain.Article, error)

	// ClaimArticles marks the given articles as claimed, all or nothing.
	// Any article already claimed or summarized fails the whole claim with
	// ErrClaimConflict.
	ClaimArticles(ctx context.Context, ids []uuid.UUID) error

	// ReleaseArticles clears claims without consuming, used on rollback.
	ReleaseArticles(ctx context.Context, ids []uuid.UUID) error
}

type SummaryStore interface {
	// SaveSummary persists the summary and flips summarized=true (clearing
	// claims) for consume as one atomic unit.
	SaveSummary(ctx context.Context, summary domain.Summary, consume []uuid.UUID) (uuid.UUID, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*domain.Summary, error)
	ListSummaries(ctx context.Context, opts ListOptions) ([]domain.Summary, error)
	CountSummaries(ctx context.Context) (int64, error)
}
