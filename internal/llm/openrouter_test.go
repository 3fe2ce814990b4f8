package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRouterProvider_SendsAttribution(t *testing.T) {
	var got http.Header
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		var body struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		model = body.Model
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("Build one dashboard end to end this week.", "stop"))
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.0-flash-exp", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx := WithPurpose(context.Background(), PurposeAdvice)
	resp, err := p.Generate(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: "Gaps: data visualization 3.0 below target."}},
		MaxTokens: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, "Build one dashboard end to end this week.", string(resp.Content))
	assert.Equal(t, "google/gemini-2.0-flash-exp", model)
	assert.Equal(t, openRouterReferer, got.Get("HTTP-Referer"))
	assert.Equal(t, "SkillForge", got.Get("X-Title"))
	assert.Equal(t, "Bearer sk-or-test", got.Get("Authorization"))
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "anthropic/claude-3-haiku"})
	assert.Error(t, err)

	// OpenRouter IDs are used as given, even when they collide with a
	// friendly OpenAI name.
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}
