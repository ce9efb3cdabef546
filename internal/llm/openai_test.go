package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o", req.Model)
		require.Equal(t, 0.3, req.Temperature)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Equal(t, "sys prompt", req.Messages[0].Content)
		require.Equal(t, "user", req.Messages[1].Role)
		require.Equal(t, 100, req.MaxTokens)

		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "  [\"NONE\"]  "}},
			},
		}))
	}))
	defer srv.Close()

	c := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	got, err := c.Complete(context.Background(), Prompt{System: "sys prompt", User: "user prompt", MaxTokens: 100})
	require.NoError(t, err)
	require.Equal(t, `["NONE"]`, got)
}

func TestOpenAICompleteNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Prompt{System: "s", User: "u"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), Prompt{System: "s", User: "u"})
	require.Error(t, err)
}

func TestRecoverArray(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare array", `[1,2]`, `[1,2]`, true},
		{"fenced", "```json\n[1,2]\n```", `[1,2]`, true},
		{"prose wrapped", "Sure! Here you go: [1,2] enjoy.", `[1,2]`, true},
		{"multiline", "result:\n[\n 1,\n 2\n]\ndone", "[\n 1,\n 2\n]", true},
		{"no array", "no structured data here", "", false},
	}
	for _, tc := range cases {
		got, ok := RecoverArray(tc.input)
		require.Equal(t, tc.ok, ok, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestRecoverObject(t *testing.T) {
	t.Parallel()

	got, ok := RecoverObject("the order is:\n```json\n{\"items\":[]}\n```")
	require.True(t, ok)
	require.Equal(t, `{"items":[]}`, got)

	_, ok = RecoverObject("nothing structured")
	require.False(t, ok)
}
