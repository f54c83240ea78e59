package domain

import (
	"time"

	"github.com/google/uuid"
)

// Article is a single ingested news item. Link is the global uniqueness key:
// ingesting the same link twice is a no-op. Summarized flips false->true
// exactly once, on the summary persistence path.
type Article struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	PubDate    time.Time `json:"pubDate"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
	Summarized bool      `json:"summarized"`
}

// ArticleMatch is an article ranked by a similarity query.
// Similarity is 1 - cosine distance to the query vector.
type ArticleMatch struct {
	Article
	Similarity float32 `json:"similarity"`
}
