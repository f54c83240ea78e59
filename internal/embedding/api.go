package embedding

import "context"

const defaultModel = "all-minilm"

// Request is a single text to encode.
type Request struct {
	Model  string
	Prompt string

	// Options lists model-specific options.
	Options map[string]any
}

type Response struct {
	Embedding []float32 `json:"embedding"`
}

// Client is the transport to an embedding encoder.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
