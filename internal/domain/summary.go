package domain

import (
	"time"

	"github.com/google/uuid"
)

// Summary is a multi-source digest produced by the summarization engine.
// Refs tie sentences of the body to the articles that ground them; the
// sentence is claimed, not verified, to be a substring of the body.
type Summary struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	TLDR       []string    `json:"tldr"`
	Summary    string      `json:"summary"`
	ArticleIDs []uuid.UUID `json:"newsArticlesIds"`
	Refs       []Ref       `json:"refs"`
	Embedding  []float32   `json:"-"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type Ref struct {
	Sentence  string    `json:"sentence"`
	ArticleID uuid.UUID `json:"id"`
}

type SummaryMatch struct {
	Summary
	Similarity float32 `json:"similarity"`
}
