package pg

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlovic/news-digest/internal/domain"
	"github.com/mpavlovic/news-digest/internal/embedding"
	"github.com/mpavlovic/news-digest/internal/storage"
	pkgtesting "github.com/mpavlovic/news-digest/pkg/testing"
)

// These tests need docker. Enable with PG_INTEGRATION=1.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	if os.Getenv("PG_INTEGRATION") == "" {
		t.Skip("set PG_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()
	container := pkgtesting.NewPGContainerWithCleanup(ctx, t)

	pool, err := NewConnectionPool(ctx, PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func testVector(fill float32) []float32 {
	vec := make([]float32, embedding.Dim)
	vec[0] = 1
	vec[1] = fill
	return vec
}

func insertTestArticle(t *testing.T, store *ArticleStore, source, link string, vec []float32) uuid.UUID {
	t.Helper()
	id, inserted, err := store.InsertArticle(context.Background(), domain.Article{
		Source:    source,
		Title:     "title " + link,
		Link:      "https://example.org/" + link,
		Content:   "content " + link,
		Embedding: vec,
	})
	require.NoError(t, err)
	require.True(t, inserted)
	return id
}

func TestArticleStoreInsertAndDedup(t *testing.T) {
	pool := newTestPool(t)
	store := NewArticleStore(pool)
	ctx := context.Background()

	id := insertTestArticle(t, store, "alpha", "a1", testVector(0))

	// Same link again is a no-op returning the existing id.
	dupID, inserted, err := store.InsertArticle(ctx, domain.Article{
		Source:    "alpha",
		Title:     "different title",
		Link:      "https://example.org/a1",
		Content:   "different content",
		Embedding: testVector(0.5),
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, id, dupID)

	got, err := store.GetArticle(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "title a1", got.Title)
	assert.Len(t, got.Embedding, embedding.Dim)

	count, err := store.CountArticles(ctx, storage.ArticleFilter{Source: "alpha"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSearcherOrdering(t *testing.T) {
	pool := newTestPool(t)
	store := NewArticleStore(pool)
	searcher := NewSearcher(pool)
	ctx := context.Background()

	near := insertTestArticle(t, store, "alpha", "near", testVector(0))
	mid := insertTestArticle(t, store, "beta", "mid", testVector(0.3))
	far := insertTestArticle(t, store, "gamma", "far", testVector(0.9))

	matches, err := searcher.NearestArticles(ctx, storage.NearestQuery{Vector: testVector(0)})
	require.NoError(t, err)

	require.Len(t, matches, 3)
	assert.Equal(t, near, matches[0].ID)
	assert.Equal(t, mid, matches[1].ID)
	assert.Equal(t, far, matches[2].ID)
	assert.Greater(t, matches[0].Similarity, matches[1].Similarity)

	k := 2
	matches, err = searcher.NearestArticles(ctx, storage.NearestQuery{Vector: testVector(0), K: &k})
	require.NoError(t, err)
	require.Len(t, matches, 2)

	matches, err = searcher.NearestArticles(ctx, storage.NearestQuery{
		Vector:     testVector(0),
		ExcludeIDs: []uuid.UUID{near},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, mid, matches[0].ID)
}

func TestClaimConflictAndRelease(t *testing.T) {
	pool := newTestPool(t)
	store := NewArticleStore(pool)
	ctx := context.Background()

	a := insertTestArticle(t, store, "alpha", "a1", testVector(0))
	b := insertTestArticle(t, store, "beta", "b1", testVector(0.1))

	require.NoError(t, store.ClaimArticles(ctx, []uuid.UUID{a}))

	// Overlapping claim fails whole and leaves b unclaimed.
	err := store.ClaimArticles(ctx, []uuid.UUID{a, b})
	assert.ErrorIs(t, err, storage.ErrClaimConflict)
	require.NoError(t, store.ClaimArticles(ctx, []uuid.UUID{b}))

	require.NoError(t, store.ReleaseArticles(ctx, []uuid.UUID{a, b}))
	require.NoError(t, store.ClaimArticles(ctx, []uuid.UUID{a, b}))
}

func TestSaveSummaryConsumes(t *testing.T) {
	pool := newTestPool(t)
	articles := NewArticleStore(pool)
	summaries := NewSummaryStore(pool)
	searcher := NewSearcher(pool)
	ctx := context.Background()

	a := insertTestArticle(t, articles, "alpha", "a1", testVector(0))
	b := insertTestArticle(t, articles, "beta", "b1", testVector(0.1))
	require.NoError(t, articles.ClaimArticles(ctx, []uuid.UUID{a, b}))

	id, err := summaries.SaveSummary(ctx, domain.Summary{
		Title:      "Digest",
		TLDR:       []string{"one", "two", "three", "four"},
		Summary:    "Body of the digest.",
		ArticleIDs: []uuid.UUID{a, b},
		Refs:       []domain.Ref{{Sentence: "Body of the digest.", ArticleID: a}},
		Embedding:  testVector(0),
	}, []uuid.UUID{a, b})
	require.NoError(t, err)

	got, err := summaries.GetSummary(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Digest", got.Title)
	assert.Len(t, got.TLDR, 4)
	require.Len(t, got.Refs, 1)
	assert.Equal(t, a, got.Refs[0].ArticleID)

	// Consumed and claim cleared: unconsumed pool is empty, re-claim fails.
	for _, articleID := range []uuid.UUID{a, b} {
		stored, err := articles.GetArticle(ctx, articleID)
		require.NoError(t, err)
		assert.True(t, stored.Summarized)
	}
	seed, err := articles.RandomUnconsumed(ctx)
	require.NoError(t, err)
	assert.Nil(t, seed)
	assert.ErrorIs(t, articles.ClaimArticles(ctx, []uuid.UUID{a}), storage.ErrClaimConflict)

	matches, err := searcher.NearestSummaries(ctx, testVector(0), 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)
}
