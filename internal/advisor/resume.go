package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/skillforge/internal/llm"
	"github.com/abhisek/skillforge/internal/resume"
)

// ResumeResult holds skill levels (1-10) detected in a resume.
type ResumeResult struct {
	Levels map[string]int `json:"levels"`
	Source Source         `json:"source"`
	Err    error          `json:"-"`
}

type resumeSkill struct {
	Skill string `json:"skill"`
	Level int    `json:"level"`
}

type resumeOutput struct {
	Skills []resumeSkill `json:"skills"`
}

// resumeSchema restricts skills to catalog IDs.
func (a *Advisor) resumeSchema() *llm.Schema {
	ids := make([]any, 0, len(a.catalog.Skills()))
	for _, s := range a.catalog.Skills() {
		ids = append(ids, s.ID)
	}
	return &llm.Schema{
		Name:        "resume-skills",
		Description: "Technical skills found in a resume with estimated proficiency",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"skills": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"skill": map[string]any{
								"type": "string",
								"enum": ids,
							},
							"level": map[string]any{
								"type":    "integer",
								"minimum": 1,
								"maximum": 10,
							},
						},
						"required":             []any{"skill", "level"},
						"additionalProperties": false,
					},
				},
			},
			"required":             []any{"skills"},
			"additionalProperties": false,
		},
	}
}

const resumeSystemPrompt = `You analyze resumes for a skills assessment tool.
List each technical skill from the allowed set that the resume shows, with
an estimated proficiency from 1 (aware) to 10 (expert). Omit skills that are
not evidenced.`

// ExtractResume detects skills in text. Keyword matching always runs; model
// levels, when available, are merged in taking the higher level per skill.
func (a *Advisor) ExtractResume(ctx context.Context, text string) ResumeResult {
	keywords := a.parser.Extract(text)
	if strings.TrimSpace(text) == "" {
		return ResumeResult{Levels: keywords, Source: SourceKeywords}
	}

	ai, err := a.extractResumeLLM(llm.WithPurpose(ctx, llm.PurposeResume), text)
	if err != nil {
		return ResumeResult{Levels: keywords, Source: SourceKeywords, Err: err}
	}
	return ResumeResult{Levels: resume.Merge(keywords, ai), Source: SourceAI}
}

func (a *Advisor) extractResumeLLM(ctx context.Context, text string) (map[string]int, error) {
	if a.provider == nil {
		return nil, &llm.ErrProviderUnavailable{Err: llm.ErrNotConfigured}
	}
	resp, err := a.provider.Generate(ctx, llm.Request{
		System: resumeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Resume:\n" + resume.Truncate(text)},
		},
		Schema:      a.resumeSchema(),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	var out resumeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("failed to parse resume response: %w", err)
	}
	levels := make(map[string]int, len(out.Skills))
	for _, s := range out.Skills {
		if !a.catalog.HasSkill(s.Skill) {
			continue
		}
		levels[s.Skill] = max(levels[s.Skill], s.Level)
	}
	return levels, nil
}
