package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/abhisek/skillforge/internal/llm"
)

// Level is a coarse low/medium/high rating.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Sentiment of an answer transcript.
type Sentiment string

const (
	SentimentPositive    Sentiment = "Positive"
	SentimentNeutral     Sentiment = "Neutral"
	SentimentChallenging Sentiment = "Challenging"
)

// MaxTranscriptKeywords bounds TranscriptAnalysis.Keywords.
const MaxTranscriptKeywords = 5

// TranscriptAnalysis summarizes a spoken or typed interview answer.
type TranscriptAnalysis struct {
	WordCount  int       `json:"word_count"`
	Confidence Level     `json:"confidence"`
	Sentiment  Sentiment `json:"sentiment"`
	Complexity Level     `json:"complexity"`
	Keywords   []string  `json:"keywords"`

	// Feedback is interviewer-style commentary; empty when no model is
	// available.
	Feedback *InterviewFeedback `json:"feedback,omitempty"`
}

// InterviewFeedback is model commentary on one interview answer.
type InterviewFeedback struct {
	Impression   string   `json:"impression"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Score        int      `json:"score"`
}

var transcriptWordRe = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z\-]*\b`)

var (
	positiveCues = map[string]bool{"great": true, "good": true, "confident": true, "strong": true, "excited": true, "ready": true, "improve": true}
	negativeCues = map[string]bool{"stuck": true, "hard": true, "difficult": true, "confused": true, "weak": true, "struggle": true, "unsure": true}
	stopWords    = map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "to": true, "for": true, "of": true,
		"on": true, "in": true, "with": true, "my": true, "is": true, "are": true, "am": true, "i": true,
		"you": true, "it": true, "that": true, "this": true, "want": true, "need": true, "learn": true,
	}
)

// AnalyzeTranscript scores an answer transcript with fixed word-count and
// cue-word rules.
func AnalyzeTranscript(transcript string) TranscriptAnalysis {
	words := transcriptWordRe.FindAllString(strings.ToLower(transcript), -1)
	if len(words) == 0 {
		return TranscriptAnalysis{
			Confidence: LevelLow,
			Sentiment:  SentimentNeutral,
			Complexity: LevelLow,
			Keywords:   []string{},
		}
	}

	unique := make(map[string]bool)
	pos, neg := 0, 0
	for _, w := range words {
		unique[w] = true
		if positiveCues[w] {
			pos++
		}
		if negativeCues[w] {
			neg++
		}
	}
	n := len(words)

	a := TranscriptAnalysis{WordCount: n, Sentiment: SentimentNeutral}
	switch {
	case pos > neg:
		a.Sentiment = SentimentPositive
	case neg > pos:
		a.Sentiment = SentimentChallenging
	}

	switch {
	case n >= 10 && float64(len(unique))/float64(n) > 0.65:
		a.Confidence = LevelHigh
	case n >= 5:
		a.Confidence = LevelMedium
	default:
		a.Confidence = LevelLow
	}

	switch {
	case n >= 25:
		a.Complexity = LevelHigh
	case n >= 12:
		a.Complexity = LevelMedium
	default:
		a.Complexity = LevelLow
	}

	a.Keywords = topKeywords(words)
	return a
}

// topKeywords ranks non-stop words by frequency, then by first appearance.
func topKeywords(words []string) []string {
	freq := make(map[string]int)
	first := make(map[string]int)
	for i, w := range words {
		if stopWords[w] || len(w) <= 2 {
			continue
		}
		if _, ok := freq[w]; !ok {
			first[w] = i
		}
		freq[w]++
	}
	keys := make([]string, 0, len(freq))
	for w := range freq {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return first[keys[i]] < first[keys[j]]
	})
	if len(keys) > MaxTranscriptKeywords {
		keys = keys[:MaxTranscriptKeywords]
	}
	return keys
}

var interviewSchema = &llm.Schema{
	Name:        "interview-feedback",
	Description: "Interviewer feedback on a candidate's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"impression": map[string]any{
				"type":        "string",
				"description": "One sentence overall impression",
			},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"improvements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"score": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 10,
			},
		},
		"required":             []any{"impression", "strengths", "improvements", "score"},
		"additionalProperties": false,
	},
}

// InterviewAnswer analyzes an answer to an interview question for roleName.
// The rule-based analysis is always returned; model feedback is attached
// when a provider is available and succeeds.
func (a *Advisor) InterviewAnswer(ctx context.Context, roleName, question, transcript string) (TranscriptAnalysis, error) {
	analysis := AnalyzeTranscript(transcript)
	if a.provider == nil || analysis.WordCount == 0 {
		return analysis, nil
	}

	msg := fmt.Sprintf("Role: %s\nQuestion asked: %s\nCandidate answer transcript: %s", roleName, question, transcript)
	resp, err := a.provider.Generate(llm.WithPurpose(ctx, llm.PurposeInterview), llm.Request{
		System: "Act as a strict but fair interviewer. Judge the answer on accuracy, " +
			"structure and depth. Keep each list to at most three short items.",
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: msg}},
		Schema:      interviewSchema,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return analysis, err
	}

	var fb InterviewFeedback
	if err := json.Unmarshal(resp.Content, &fb); err != nil {
		return analysis, fmt.Errorf("failed to parse interview feedback: %w", err)
	}
	analysis.Feedback = &fb
	return analysis, nil
}
