package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpavlovic/news-digest/internal/apperr"
)

type stubChatClient struct {
	content string
	err     error
	lastMsg string
}

func (c *stubChatClient) Complete(_ context.Context, _, user string) (string, error) {
	c.lastMsg = user
	if c.err != nil {
		return "", c.err
	}
	return c.content, nil
}

func inputs(n int) []ArticleInput {
	out := make([]ArticleInput, n)
	for i := range out {
		out[i] = ArticleInput{
			ID:      uuid.New(),
			Title:   fmt.Sprintf("title %d", i),
			Content: fmt.Sprintf("content %d", i),
		}
	}
	return out
}

func validDraftJSON(refID uuid.UUID) string {
	return `{
		"title": "Harbour reopens",
		"tldr": ["one", "two", "three", "four"],
		"summary": "The harbour reopened on Monday. Ferry service resumed at noon.",
		"refs": [{"sentence": "Ferry service resumed at noon.", "id": "` + refID.String() + `"}]
	}`
}

func TestSummarizeValidResponse(t *testing.T) {
	in := inputs(3)
	client := &stubChatClient{content: validDraftJSON(in[0].ID)}
	e := NewEngine(client)

	draft, err := e.Summarize(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "Harbour reopens", draft.Title)
	assert.Len(t, draft.TLDR, 4)
	require.Len(t, draft.Refs, 1)
	assert.Equal(t, in[0].ID, draft.Refs[0].ArticleID)

	// The prompt carries every article as {id, title, content}.
	for _, a := range in {
		assert.Contains(t, client.lastMsg, a.ID.String())
		assert.Contains(t, client.lastMsg, a.Title)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	e := NewEngine(&stubChatClient{})

	_, err := e.Summarize(context.Background(), nil)

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSummarizeMalformedJSON(t *testing.T) {
	client := &stubChatClient{content: "Sorry, I cannot summarize these articles."}
	e := NewEngine(client)

	_, err := e.Summarize(context.Background(), inputs(2))

	var sv *apperr.SchemaViolationError
	assert.ErrorAs(t, err, &sv)
}

func TestSummarizeMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing title", `{"tldr":["a"],"summary":"s","refs":[]}`},
		{"missing summary", `{"title":"t","tldr":["a"],"refs":[]}`},
		{"missing tldr", `{"title":"t","summary":"s","refs":[]}`},
		{"bad ref id", `{"title":"t","tldr":["a"],"summary":"s","refs":[{"sentence":"s","id":"not-a-uuid"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&stubChatClient{content: tt.content})

			_, err := e.Summarize(context.Background(), inputs(1))

			var sv *apperr.SchemaViolationError
			assert.ErrorAs(t, err, &sv)
		})
	}
}

func TestSummarizeTransportFailure(t *testing.T) {
	client := &stubChatClient{err: errors.New("connection refused")}
	e := NewEngine(client)

	_, err := e.Summarize(context.Background(), inputs(1))

	var es *apperr.ExternalServiceError
	assert.ErrorAs(t, err, &es)
}

func TestSummarizeNonSubstringRefIsKept(t *testing.T) {
	id := uuid.New()
	content := `{
		"title": "t",
		"tldr": ["a", "b", "c", "d"],
		"summary": "Something entirely different.",
		"refs": [{"sentence": "This sentence is not in the body.", "id": "` + id.String() + `"}]
	}`
	e := NewEngine(&stubChatClient{content: content})

	draft, err := e.Summarize(context.Background(), inputs(1))
	require.NoError(t, err)

	// Best-effort contract: the draft survives with the ref intact.
	require.Len(t, draft.Refs, 1)
	assert.Equal(t, id, draft.Refs[0].ArticleID)
}

func TestSummarizeWarnsOnForeignRefID(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	in := inputs(2)
	foreign := uuid.New()
	content := `{
		"title": "t",
		"tldr": ["a", "b", "c", "d"],
		"summary": "Body sentence.",
		"refs": [
			{"sentence": "Body sentence.", "id": "` + in[0].ID.String() + `"},
			{"sentence": "Body sentence.", "id": "` + foreign.String() + `"}
		]
	}`
	e := NewEngine(&stubChatClient{content: content})

	draft, err := e.Summarize(context.Background(), in)
	require.NoError(t, err)

	// The foreign ref is logged but kept, same as the substring claim.
	require.Len(t, draft.Refs, 2)
	assert.Contains(t, logs.String(), "outside the summarized set")
	assert.Contains(t, logs.String(), foreign.String())
	assert.NotContains(t, logs.String(), in[0].ID.String())
}

func TestOpenAIClientCompleteEndToEnd(t *testing.T) {
	draftContent := `{"title":"t","tldr":["a"],"summary":"s","refs":[]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4-turbo", req["model"])
		rf, ok := req["response_format"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "json_object", rf["type"])

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": draftContent}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{
		Endpoint: srv.URL,
		Model:    "gpt-4-turbo",
		APIKey:   "test-key",
	})
	require.NoError(t, err)

	got, err := client.Complete(context.Background(), systemPrompt, "summarize this")
	require.NoError(t, err)
	assert.Equal(t, draftContent, got)
}

func TestOpenAIClientCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "rate limited") || strings.Contains(err.Error(), "429"))
}
