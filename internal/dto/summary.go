package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/domain"
)

type Ref struct {
	Sentence  string    `json:"sentence"`
	ArticleID uuid.UUID `json:"id"`
}

type Summary struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	TLDR       []string    `json:"tldr"`
	Summary    string      `json:"summary"`
	ArticleIDs []uuid.UUID `json:"news_articles_ids"`
	Refs       []Ref       `json:"refs"`
	CreatedAt  time.Time   `json:"created_at"`
	Similarity float32     `json:"similarity,omitempty"`
}

type SummaryList struct {
	Total     int64     `json:"total"`
	Offset    int       `json:"offset"`
	Limit     int       `json:"limit"`
	Summaries []Summary `json:"summaries"`
}

type SummarySearchResponse struct {
	Query     string    `json:"query"`
	Summaries []Summary `json:"summaries"`
}

func FromSummary(s domain.Summary) Summary {
	refs := make([]Ref, len(s.Refs))
	for i, r := range s.Refs {
		refs[i] = Ref{Sentence: r.Sentence, ArticleID: r.ArticleID}
	}

	// Empty collections serialize as [], never null.
	tldr := s.TLDR
	if tldr == nil {
		tldr = []string{}
	}
	ids := s.ArticleIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}

	return Summary{
		ID:         s.ID,
		Title:      s.Title,
		TLDR:       tldr,
		Summary:    s.Summary,
		ArticleIDs: ids,
		Refs:       refs,
		CreatedAt:  s.CreatedAt,
	}
}

func FromSummaries(summaries []domain.Summary) []Summary {
	out := make([]Summary, len(summaries))
	for i, s := range summaries {
		out[i] = FromSummary(s)
	}
	return out
}

func FromSummaryMatch(m domain.SummaryMatch) Summary {
	s := FromSummary(m.Summary)
	s.Similarity = m.Similarity
	return s
}

func FromSummaryMatches(matches []domain.SummaryMatch) []Summary {
	out := make([]Summary, len(matches))
	for i, m := range matches {
		out[i] = FromSummaryMatch(m)
	}
	return out
}
