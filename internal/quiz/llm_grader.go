package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/llm"
)

// LLMGraderConfig holds configuration for the LLM grader.
type LLMGraderConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultLLMGraderConfig returns sensible defaults.
func DefaultLLMGraderConfig() LLMGraderConfig {
	return LLMGraderConfig{
		MaxTokens:   256,
		Temperature: 0.0,
	}
}

// LLMGrader grades free-text answers with an LLM. Choice questions and
// free-text answers that match an accepted answer exactly are graded
// locally without a call. Provider failures are returned to the caller,
// which falls back to RuleGrader.
type LLMGrader struct {
	provider llm.Provider
	cfg      LLMGraderConfig
}

// NewLLMGrader creates an LLM-backed grader.
func NewLLMGrader(provider llm.Provider, cfg LLMGraderConfig) *LLMGrader {
	return &LLMGrader{provider: provider, cfg: cfg}
}

// GradeSchema defines the JSON schema for free-text grading responses.
var GradeSchema = &llm.Schema{
	Name:        "grade-answer",
	Description: "Verdict on whether a free-text answer to a skills quiz question is correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "True when the answer demonstrates the asked-for knowledge",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "Confidence in the verdict",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One sentence of feedback for the user",
			},
		},
		"required":             []any{"correct", "confidence", "feedback"},
		"additionalProperties": false,
	},
}

type gradeOutput struct {
	Correct    bool    `json:"correct"`
	Confidence float64 `json:"confidence"`
	Feedback   string  `json:"feedback"`
}

func (g *LLMGrader) Grade(ctx context.Context, q competency.Question, answer string) (Grade, error) {
	if q.Format == competency.FormatChoice {
		return RuleGrader{}.Grade(ctx, q, answer)
	}
	for _, a := range q.Accepted {
		if normalize(a) == normalize(answer) {
			return Grade{Correct: true, GradedBy: GradedByRules}, nil
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGrade)

	userMsg, err := buildGradeMessage(q, answer)
	if err != nil {
		return Grade{}, fmt.Errorf("build grading prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: gradeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      GradeSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return Grade{}, fmt.Errorf("LLM grading failed: %w", err)
	}

	var out gradeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Grade{}, fmt.Errorf("failed to parse grading response: %w", err)
	}
	return Grade{Correct: out.Correct, GradedBy: GradedByLLM, Feedback: out.Feedback}, nil
}

const gradeSystemPrompt = `You grade answers in a technical skills self-assessment quiz.

Instructions:
- Decide whether the answer shows the knowledge the question asks for.
- Accept paraphrases, synonyms and minor spelling mistakes.
- Reject answers that are vague, off-topic or factually wrong.
- Keep feedback to one sentence addressed to the user.`

var gradeUserTemplate = template.Must(template.New("grade").Parse(`Question: {{.Prompt}}
{{if .Accepted}}Reference answers: {{range $i, $a := .Accepted}}{{if $i}}; {{end}}{{$a}}{{end}}
{{end}}{{if .Keywords}}Key concepts: {{range $i, $k := .Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}
{{end}}User's answer: {{.Answer}}`))

func buildGradeMessage(q competency.Question, answer string) (string, error) {
	var buf bytes.Buffer
	err := gradeUserTemplate.Execute(&buf, struct {
		Prompt   string
		Accepted []string
		Keywords []string
		Answer   string
	}{q.Prompt, q.Accepted, q.Keywords, answer})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
