// Package summarizer sends a candidate article set to a generative model
// under a strict JSON contract and validates the response shape.
package summarizer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mpavlovic/news-digest/internal/apperr"
)

// ArticleInput is what the model sees per article.
type ArticleInput struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// Ref ties one sentence of the summary body to the article it came from.
// The sentence is claimed by the model to be a verbatim substring of the
// body; the claim is checked best-effort, not enforced.
type Ref struct {
	Sentence  string    `json:"sentence"`
	ArticleID uuid.UUID `json:"id"`
}

// Draft is the validated output of one summarize call, not yet persisted.
type Draft struct {
	Title   string
	TLDR    []string
	Summary string
	Refs    []Ref
}

type draftPayload struct {
	Title   string   `json:"title"`
	TLDR    []string `json:"tldr"`
	Summary string   `json:"summary"`
	Refs    []Ref    `json:"refs"`
}

type Engine struct {
	client ChatClient
}

func NewEngine(client ChatClient) *Engine {
	return &Engine{client: client}
}

// Summarize performs the single generation call and validates the declared
// JSON shape. Transport/API failures surface as ExternalServiceError,
// non-conforming bodies as SchemaViolationError. No retry either way.
func (e *Engine) Summarize(ctx context.Context, articles []ArticleInput) (*Draft, error) {
	if len(articles) == 0 {
		return nil, apperr.NewValidation("no articles to summarize")
	}

	formatted, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return nil, apperr.NewValidationWrap("failed to encode articles", err)
	}

	slog.Info("Requesting summary generation", "articles", len(articles))

	raw, err := e.client.Complete(ctx, systemPrompt, summarizePrompt+string(formatted))
	if err != nil {
		return nil, apperr.NewExternalService("summarization", err)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, apperr.NewSchemaViolation("model returned malformed JSON", err)
	}
	if payload.Title == "" {
		return nil, apperr.NewSchemaViolation("model response missing title", nil)
	}
	if payload.Summary == "" {
		return nil, apperr.NewSchemaViolation("model response missing summary", nil)
	}
	if len(payload.TLDR) == 0 {
		return nil, apperr.NewSchemaViolation("model response missing tldr points", nil)
	}

	// Best-effort checks of the ref claims; violations are logged and kept
	// rather than rejected.
	known := make(map[uuid.UUID]struct{}, len(articles))
	for _, a := range articles {
		known[a.ID] = struct{}{}
	}
	for _, ref := range payload.Refs {
		if _, ok := known[ref.ArticleID]; !ok {
			slog.Warn("Ref points at an article outside the summarized set",
				"article_id", ref.ArticleID)
		}
		if !strings.Contains(payload.Summary, ref.Sentence) {
			slog.Warn("Ref sentence is not a substring of the summary body",
				"article_id", ref.ArticleID, "sentence", ref.Sentence)
		}
	}

	return &Draft{
		Title:   payload.Title,
		TLDR:    payload.TLDR,
		Summary: payload.Summary,
		Refs:    payload.Refs,
	}, nil
}
