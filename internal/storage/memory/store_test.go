package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/storage"
)

var testCtx = context.Background()

func insert(t *testing.T, s *Store, source, link string, embedding []float32) uuid.UUID {
	t.Helper()
	id, inserted, err := s.InsertArticle(testCtx, domain.Article{
		Source:    source,
		Title:     "article from " + source,
		Link:      link,
		Content:   "content",
		Embedding: embedding,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	return id
}

func intPtr(n int) *int { return &n }

func TestInsertArticleDuplicateLinkIsNoOp(t *testing.T) {
	s := NewStore()

	first := insert(t, s, "HKFP", "https://example.com/a", []float32{1, 0})

	id, inserted, err := s.InsertArticle(testCtx, domain.Article{
		Source:    "RTHK",
		Link:      "https://example.com/a",
		Embedding: []float32{0, 1},
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, id)

	count, err := s.CountArticles(testCtx, storage.ArticleFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNearestArticlesRankedByDistance(t *testing.T) {
	s := NewStore()
	far := insert(t, s, "A", "l1", []float32{0, 1, 0})
	near := insert(t, s, "B", "l2", []float32{1, 0.01, 0})
	mid := insert(t, s, "C", "l3", []float32{1, 1, 0})

	matches, err := s.NearestArticles(testCtx, storage.NearestQuery{Vector: []float32{1, 0, 0}})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, near, matches[0].ID)
	assert.Equal(t, mid, matches[1].ID)
	assert.Equal(t, far, matches[2].ID)

	// Non-decreasing distance means non-increasing similarity.
	assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
	assert.GreaterOrEqual(t, matches[1].Similarity, matches[2].Similarity)
}

func TestNearestArticlesTieBreakAscendingID(t *testing.T) {
	s := NewStore()

	// Bit-identical embeddings, hence bit-identical distances.
	for _, link := range []string{"t1", "t2", "t3", "t4"} {
		insert(t, s, "A", link, []float32{1, 0})
	}

	matches, err := s.NearestArticles(testCtx, storage.NearestQuery{Vector: []float32{1, 0}})
	require.NoError(t, err)
	require.Len(t, matches, 4)

	for i := 1; i < len(matches); i++ {
		assert.True(t, lessID(matches[i-1].ID, matches[i].ID),
			"expected ascending ids on tied distance")
	}
}

func TestNearestArticlesTruncatesAfterFullRanking(t *testing.T) {
	s := NewStore()
	insert(t, s, "A", "l1", []float32{0, 1, 0})
	near := insert(t, s, "B", "l2", []float32{1, 0.01, 0})
	mid := insert(t, s, "C", "l3", []float32{1, 0.5, 0})

	matches, err := s.NearestArticles(testCtx, storage.NearestQuery{
		Vector: []float32{1, 0, 0},
		K:      intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The two smallest distances survive; the far item is the one cut.
	assert.Equal(t, near, matches[0].ID)
	assert.Equal(t, mid, matches[1].ID)
}

func TestNearestArticlesFilters(t *testing.T) {
	s := NewStore()
	insert(t, s, "A", "l1", []float32{1, 0})
	insert(t, s, "B", "l2", []float32{1, 0})
	seed := insert(t, s, "A", "l3", []float32{1, 0})

	bySource, err := s.NearestArticles(testCtx, storage.NearestQuery{
		Vector: []float32{1, 0},
		Source: "A",
	})
	require.NoError(t, err)
	require.Len(t, bySource, 2)

	excluded, err := s.NearestArticles(testCtx, storage.NearestQuery{
		Vector:        []float32{1, 0},
		ExcludeSource: "A",
	})
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, "B", excluded[0].Source)

	noSeed, err := s.NearestArticles(testCtx, storage.NearestQuery{
		Vector:     []float32{1, 0},
		ExcludeIDs: []uuid.UUID{seed},
	})
	require.NoError(t, err)
	require.Len(t, noSeed, 2)
	for _, m := range noSeed {
		assert.NotEqual(t, seed, m.ID)
	}
}

func TestNearestArticlesUnconsumedOnly(t *testing.T) {
	s := NewStore()
	consumed := insert(t, s, "A", "l1", []float32{1, 0})
	claimed := insert(t, s, "B", "l2", []float32{1, 0})
	free := insert(t, s, "C", "l3", []float32{1, 0})

	_, err := s.SaveSummary(testCtx, domain.Summary{Title: "t", Summary: "s", Embedding: []float32{1, 0}}, []uuid.UUID{consumed})
	require.NoError(t, err)
	require.NoError(t, s.ClaimArticles(testCtx, []uuid.UUID{claimed}))

	matches, err := s.NearestArticles(testCtx, storage.NearestQuery{
		Vector:         []float32{1, 0},
		UnconsumedOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, free, matches[0].ID)
}

func TestNearestArticlesEmptyResultIsValid(t *testing.T) {
	s := NewStore()

	matches, err := s.NearestArticles(testCtx, storage.NearestQuery{Vector: []float32{1, 0}})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClaimArticlesAllOrNothing(t *testing.T) {
	s := NewStore()
	a := insert(t, s, "A", "l1", []float32{1, 0})
	b := insert(t, s, "B", "l2", []float32{1, 0})

	require.NoError(t, s.ClaimArticles(testCtx, []uuid.UUID{a}))

	err := s.ClaimArticles(testCtx, []uuid.UUID{b, a})
	assert.ErrorIs(t, err, storage.ErrClaimConflict)

	// b must not be left claimed by the failed attempt.
	seed, err := s.RandomUnconsumed(testCtx)
	require.NoError(t, err)
	require.NotNil(t, seed)
	assert.Equal(t, b, seed.ID)
}

func TestReleaseArticles(t *testing.T) {
	s := NewStore()
	a := insert(t, s, "A", "l1", []float32{1, 0})

	require.NoError(t, s.ClaimArticles(testCtx, []uuid.UUID{a}))
	require.NoError(t, s.ReleaseArticles(testCtx, []uuid.UUID{a}))

	require.NoError(t, s.ClaimArticles(testCtx, []uuid.UUID{a}))
}

func TestSaveSummaryConsumesAndClearsClaims(t *testing.T) {
	s := NewStore()
	a := insert(t, s, "A", "l1", []float32{1, 0})

	require.NoError(t, s.ClaimArticles(testCtx, []uuid.UUID{a}))

	id, err := s.SaveSummary(testCtx, domain.Summary{
		Title:      "digest",
		Summary:    "body",
		ArticleIDs: []uuid.UUID{a},
		Embedding:  []float32{1, 0},
	}, []uuid.UUID{a})
	require.NoError(t, err)

	got, err := s.GetSummary(testCtx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "digest", got.Title)

	article, err := s.GetArticle(testCtx, a)
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.True(t, article.Summarized)

	seed, err := s.RandomUnconsumed(testCtx)
	require.NoError(t, err)
	assert.Nil(t, seed)
}

func TestGetSummaryIdempotentRead(t *testing.T) {
	s := NewStore()
	id, err := s.SaveSummary(testCtx, domain.Summary{
		Title:     "digest",
		TLDR:      []string{"one", "two", "three", "four"},
		Summary:   "body",
		Embedding: []float32{1, 0},
	}, nil)
	require.NoError(t, err)

	first, err := s.GetSummary(testCtx, id)
	require.NoError(t, err)
	second, err := s.GetSummary(testCtx, id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
