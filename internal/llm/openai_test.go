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

func openaiServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
	}
}

func TestOpenAIProvider_GradesAnswer(t *testing.T) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := openaiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(string(gradeReply), "stop"))
	})

	resp, err := p.Generate(context.Background(), gradeRequest())
	require.NoError(t, err)

	assert.JSONEq(t, string(gradeReply), string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 90, OutputTokens: 30, TotalTokens: 120}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)

	require.Len(t, body.Messages, 2)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "json_schema", body.ResponseFormat.Type)
	assert.Equal(t, "grade-answer", body.ResponseFormat.JSONSchema.Name)
	assert.True(t, body.ResponseFormat.JSONSchema.Strict)
}

func TestOpenAIProvider_ChatHistoryKeepsRoles(t *testing.T) {
	var roles []string
	p := openaiServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		for _, m := range body.Messages {
			roles = append(roles, m.Role)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("Try the pandas groupby exercises next.", "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{
			{Role: RoleUser, Content: "How do I get better at Python?"},
			{Role: RoleAssistant, Content: "Which part feels hardest?"},
			{Role: RoleUser, Content: "Data wrangling."},
		},
		MaxTokens: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "Try the pandas groupby exercises next.", string(resp.Content))
	assert.Equal(t, []string{"user", "assistant", "user"}, roles)
}

func TestOpenAIProvider_LengthCutoffIsTruncation(t *testing.T) {
	p := openaiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"correct":true,"confid`, "length"))
	})

	_, err := p.Generate(context.Background(), gradeRequest())
	var trunc *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &trunc)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := openaiServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := chatCompletion("", "stop")
		resp["choices"] = []any{}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	_, err := p.Generate(context.Background(), gradeRequest())
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestOpenAIProvider_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			assert.ErrorAs(t, err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.ErrorAs(t, err, &unavail)
		}},
		{"bad key", http.StatusUnauthorized, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			assert.ErrorAs(t, err, &unavail)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openaiServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": http.StatusText(tt.status)},
				})
			})
			_, err := p.Generate(context.Background(), gradeRequest())
			tt.check(t, err)
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1-nano"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1-nano", p.ModelID())
}
