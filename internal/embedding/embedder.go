package embedding

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// Dim is the embedding dimension shared by articles, queries and summaries.
	Dim = 384

	// maxInputChars bounds encoder input in characters, not bytes; longer
	// texts keep their first maxInputChars runes.
	maxInputChars = 10_000

	placeholderText = "No content available"
)

// Embedder turns text into a Dim-length vector. The primary path is an
// external sentence encoder, constructed lazily and exactly once per process.
// When the encoder is unavailable or fails, Embed degrades to a deterministic
// fallback vector instead of surfacing the error.
type Embedder struct {
	model     string
	newClient func() (Client, error)

	once    sync.Once
	client  Client
	initErr error
}

type EmbedderOption func(e *Embedder)

func NewEmbedder(newClient func() (Client, error), opts ...EmbedderOption) *Embedder {
	base := &Embedder{
		model:     defaultModel,
		newClient: newClient,
	}

	for _, opt := range opts {
		opt(base)
	}

	return base
}

func WithModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// Embed never fails: encoder errors degrade to the fallback vector.
// The returned vector always has length Dim.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	text = normalizeInput(text)

	client, err := e.getClient()
	if err != nil {
		slog.Warn("Embedding encoder unavailable, using fallback embedding", "error", err)
		return FallbackVector(text)
	}

	resp, err := client.Generate(ctx, Request{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		slog.Warn("Embedding generation failed, using fallback embedding", "model", e.model, "error", err)
		return FallbackVector(text)
	}

	if len(resp.Embedding) != Dim {
		slog.Warn("Encoder returned unexpected dimension, using fallback embedding",
			"model", e.model, "got", len(resp.Embedding), "want", Dim)
		return FallbackVector(text)
	}

	return resp.Embedding
}

func (e *Embedder) getClient() (Client, error) {
	e.once.Do(func() {
		e.client, e.initErr = e.newClient()
		if e.initErr == nil {
			slog.Info("Embedding encoder initialized", "model", e.model)
		}
	})
	return e.client, e.initErr
}

func normalizeInput(text string) string {
	if strings.TrimSpace(text) == "" {
		return placeholderText
	}
	if utf8.RuneCountInString(text) > maxInputChars {
		return string([]rune(text)[:maxInputChars])
	}
	return text
}
