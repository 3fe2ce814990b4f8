// Package advisor provides the AI career-advisor features: chat, per-skill
// learning advice, resume skill extraction and interview transcript
// analysis. Every feature works without a provider by falling back to
// deterministic rules; provider failures never surface as errors.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/resume"
)

// Source labels where a piece of advice came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
	SourceKeywords Source = "keywords"
)

// Config tunes model calls.
type Config struct {
	MaxTokens      int
	Temperature    float64
	MaxConcurrency int
}

// DefaultConfig returns the defaults used by the CLI and server.
func DefaultConfig() Config {
	return Config{
		MaxTokens:      512,
		Temperature:    0.7,
		MaxConcurrency: 3,
	}
}

// Reply is advice text with its origin. Err holds the provider failure that
// caused a fallback, for display as a hint; it is nil for AI replies.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	Err    error  `json:"-"`
}

// AI reports whether the reply came from the model.
func (r Reply) AI() bool { return r.Source == SourceAI }

// Advisor answers career questions. A nil provider runs in rule-based mode.
type Advisor struct {
	catalog  *competency.Catalog
	provider llm.Provider
	parser   *resume.Parser
	cfg      Config
}

// New creates an Advisor.
func New(cat *competency.Catalog, provider llm.Provider, cfg Config) *Advisor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	return &Advisor{
		catalog:  cat,
		provider: provider,
		parser:   resume.NewParser(cat),
		cfg:      cfg,
	}
}

// Available reports whether a model provider is configured.
func (a *Advisor) Available() bool {
	return a.provider != nil
}

// replySchema constrains free-form answers to a single text field.
var replySchema = &llm.Schema{
	Name:        "advisor-reply",
	Description: "A reply from the career advisor",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{
				"type":        "string",
				"description": "The advice, plain text, under 200 words",
			},
		},
		"required":             []any{"reply"},
		"additionalProperties": false,
	},
}

type replyOutput struct {
	Reply string `json:"reply"`
}

const chatSystemPrompt = `You are SkillForge, a concise, expert career and skills coach.
Give actionable, specific advice. Keep answers under 200 words.`

// Chat answers a free-form question. contextText is appended to the
// system prompt (for example the user's role and top gaps).
func (a *Advisor) Chat(ctx context.Context, message, contextText string) Reply {
	system := chatSystemPrompt
	if contextText = strings.TrimSpace(contextText); contextText != "" {
		system += "\n\n" + contextText
	}

	text, err := a.generateReply(llm.WithPurpose(ctx, llm.PurposeChat), system, message)
	if err != nil {
		return Reply{Text: FallbackChat(message), Source: SourceFallback, Err: err}
	}
	return Reply{Text: text, Source: SourceAI}
}

// LearningAdvice returns a short action plan for moving skillName from
// current to target, both on the 0-10 scale.
func (a *Advisor) LearningAdvice(ctx context.Context, skillName string, current, target float64) Reply {
	msg := fmt.Sprintf("I'm at level %.1f/10 in %s and need to reach %.1f/10. "+
		"Give me a concise 3-step action plan (under 100 words).", current, skillName, target)

	text, err := a.generateReply(llm.EnsurePurpose(ctx, llm.PurposeAdvice), chatSystemPrompt, msg)
	if err != nil {
		return Reply{Text: FallbackAdvice(skillName, current, target), Source: SourceFallback, Err: err}
	}
	return Reply{Text: text, Source: SourceAI}
}

func (a *Advisor) generateReply(ctx context.Context, system, message string) (string, error) {
	if a.provider == nil {
		return "", &llm.ErrProviderUnavailable{Err: llm.ErrNotConfigured}
	}
	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: message}},
		Schema:      replySchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	var out replyOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("failed to parse advisor reply: %w", err)
	}
	if strings.TrimSpace(out.Reply) == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty reply")}
	}
	return strings.TrimSpace(out.Reply), nil
}
