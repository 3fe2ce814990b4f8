package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: gradeReply, Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Content: json.RawMessage(`{"reply":"Practice joins."}`)},
	)

	first, err := mock.Generate(context.Background(), gradeRequest())
	require.NoError(t, err)
	assert.JSONEq(t, string(gradeReply), string(first.Content))
	assert.Equal(t, Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, first.Usage)
	assert.Equal(t, StopEnd, first.StopReason)

	second, err := mock.Generate(context.Background(), Request{System: "advisor"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reply":"Practice joins."}`, string(second.Content))

	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "advisor", mock.Calls[1].System)
	assert.Zero(t, mock.Pending())
}

func TestMockProvider_DrainedIsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestMockProvider_ScriptedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	mock.AddResponse(MockResponse{Content: gradeReply})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, 1, mock.Pending())
	assert.Equal(t, "mock", mock.ModelID())
}

func TestMockProvider_RecordsPurpose(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: gradeReply}, MockResponse{Content: gradeReply})

	_, _ = mock.Generate(WithPurpose(context.Background(), PurposeGrade), gradeRequest())
	_, _ = mock.Generate(context.Background(), gradeRequest())

	assert.Equal(t, []Purpose{PurposeGrade, PurposeUnknown}, mock.Purposes)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, PurposeUnknown, PurposeFrom(ctx))

	ctx = WithPurpose(ctx, PurposeResume)
	assert.Equal(t, PurposeResume, PurposeFrom(ctx))

	// The chat screen asks for advice through the chat path; the outer
	// tag wins.
	chat := WithPurpose(context.Background(), PurposeChat)
	assert.Equal(t, PurposeChat, PurposeFrom(EnsurePurpose(chat, PurposeAdvice)))
	assert.Equal(t, PurposeAdvice, PurposeFrom(EnsurePurpose(context.Background(), PurposeAdvice)))
}

func TestPurpose_Labels(t *testing.T) {
	for _, p := range Purposes() {
		assert.True(t, p.Known(), p)
		assert.NotEqual(t, string(p), p.Label(), "%s has no label", p)
	}
	assert.False(t, Purpose("quiz-grade").Known())
	assert.Equal(t, "quiz-grade", Purpose("quiz-grade").Label())
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ErrProviderUnavailable{Err: ErrNotConfigured}, "no LLM provider configured"},
		{fmt.Errorf("grade: %w", context.DeadlineExceeded), "the model took too long to answer"},
		{context.Canceled, "request cancelled"},
		{&ErrRateLimit{Err: errors.New("429")}, "the provider is rate limiting requests"},
		{&ErrInvalidResponse{Err: errors.New("not JSON")}, "the model returned an unusable answer"},
		{&ErrMaxTokensExceeded{}, "the model returned an unusable answer"},
		{&ErrProviderUnavailable{Err: errors.New("dial tcp")}, "the provider could not be reached"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err), "%v", tt.err)
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "rate limited, retry after 5s: 429", (&ErrRateLimit{RetryAfter: 5 * time.Second, Err: errors.New("429")}).Error())
	assert.Equal(t, "rate limited: 429", (&ErrRateLimit{Err: errors.New("429")}).Error())
	assert.Equal(t, "LLM provider unavailable", (&ErrProviderUnavailable{}).Error())
	assert.ErrorIs(t, &ErrProviderUnavailable{Err: ErrNotConfigured}, ErrNotConfigured)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
