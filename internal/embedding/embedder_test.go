package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlovic/news-digest/pkg/vecmath"
)

type fakeClient struct {
	vec        []float32
	err        error
	lastPrompt string
	calls      int
}

func (c *fakeClient) Generate(_ context.Context, req Request) (*Response, error) {
	c.calls++
	c.lastPrompt = req.Prompt
	if c.err != nil {
		return nil, c.err
	}
	return &Response{Embedding: c.vec}, nil
}

func failingFactory() (Client, error) {
	return nil, errors.New("encoder not reachable")
}

func TestFallbackVectorDeterministic(t *testing.T) {
	a := FallbackVector("hong kong harbour reopens after typhoon")
	b := FallbackVector("hong kong harbour reopens after typhoon")

	assert.Equal(t, a, b)
}

func TestFallbackVectorDiffersPerText(t *testing.T) {
	a := FallbackVector("first article")
	b := FallbackVector("second article")

	assert.NotEqual(t, a, b)
}

func TestFallbackVectorUnitNorm(t *testing.T) {
	v := FallbackVector("any text at all")

	require.Len(t, v, Dim)
	assert.InDelta(t, 1.0, vecmath.Norm(v), 1e-4)
}

func TestEmbedUsesFallbackWhenInitFails(t *testing.T) {
	e := NewEmbedder(failingFactory)

	got := e.Embed(context.Background(), "some text")

	assert.Equal(t, FallbackVector("some text"), got)
}

func TestEmbedUsesFallbackWhenGenerateFails(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	got := e.Embed(context.Background(), "some text")

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, FallbackVector("some text"), got)
}

func TestEmbedUsesFallbackOnWrongDimension(t *testing.T) {
	client := &fakeClient{vec: make([]float32, 42)}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	got := e.Embed(context.Background(), "some text")

	assert.Equal(t, FallbackVector("some text"), got)
}

func TestEmbedPrimaryPath(t *testing.T) {
	vec := make([]float32, Dim)
	vec[0] = 1
	client := &fakeClient{vec: vec}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	got := e.Embed(context.Background(), "some text")

	assert.Equal(t, vec, got)
	assert.Equal(t, "some text", client.lastPrompt)
}

func TestEmbedEmptyInputUsesPlaceholder(t *testing.T) {
	client := &fakeClient{vec: make([]float32, Dim)}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	e.Embed(context.Background(), "   \n ")

	assert.Equal(t, placeholderText, client.lastPrompt)
}

func TestEmbedTruncatesLongInput(t *testing.T) {
	long := strings.Repeat("x", maxInputChars+500)
	client := &fakeClient{vec: make([]float32, Dim)}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	e.Embed(context.Background(), long)

	assert.Len(t, client.lastPrompt, maxInputChars)
}

func TestEmbedTruncatesByCharactersNotBytes(t *testing.T) {
	client := &fakeClient{vec: make([]float32, Dim)}
	e := NewEmbedder(func() (Client, error) { return client, nil })

	// Three bytes per rune: well past the limit in bytes but under it in
	// characters, so it must pass through whole.
	under := strings.Repeat("界", maxInputChars/2)
	e.Embed(context.Background(), under)
	assert.Equal(t, under, client.lastPrompt)

	over := strings.Repeat("界", maxInputChars+500)
	e.Embed(context.Background(), over)
	assert.Equal(t, maxInputChars, utf8.RuneCountInString(client.lastPrompt))
	assert.True(t, utf8.ValidString(client.lastPrompt), "truncation must not split a rune")
}

func TestFallbackTruncationStable(t *testing.T) {
	long := strings.Repeat("y", maxInputChars+1000)

	e := NewEmbedder(failingFactory)
	got := e.Embed(context.Background(), long)

	// Degraded embedding of an over-long text matches the fallback of its
	// truncated form.
	assert.Equal(t, FallbackVector(long[:maxInputChars]), got)
}

func TestEmbedderInitializesOnce(t *testing.T) {
	factoryCalls := 0
	client := &fakeClient{vec: make([]float32, Dim)}
	e := NewEmbedder(func() (Client, error) {
		factoryCalls++
		return client, nil
	})

	for i := 0; i < 5; i++ {
		e.Embed(context.Background(), "text")
	}

	assert.Equal(t, 1, factoryCalls)
}
