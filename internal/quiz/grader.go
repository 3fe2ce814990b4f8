package quiz

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/abhisek/skillforge/internal/competency"
)

// Grader labels stored with each response.
const (
	GradedByRules = "rules"
	GradedByLLM   = "llm"
)

// KeywordCoverage is the fraction of a free-text question's keywords an
// answer must mention to be accepted by the rule grader.
const KeywordCoverage = 0.5

// Grade is the outcome of grading one answer.
type Grade struct {
	Correct  bool
	GradedBy string
	Feedback string
}

// Grader decides whether an answer is correct.
type Grader interface {
	Grade(ctx context.Context, q competency.Question, answer string) (Grade, error)
}

// RuleGrader grades answers locally without external calls.
//
// Normalization rules:
//   - Whitespace is trimmed and collapsed; comparison is case-insensitive
//   - Choice questions match the choice text first, then the 1-based
//     choice number or letter
//   - Free-text questions accept any listed answer after normalization,
//     or enough keyword coverage when keywords are declared
type RuleGrader struct{}

func (RuleGrader) Grade(_ context.Context, q competency.Question, answer string) (Grade, error) {
	return Grade{Correct: CheckAnswer(answer, q), GradedBy: GradedByRules}, nil
}

// CheckAnswer applies the rule-based grading to an answer.
func CheckAnswer(answer string, q competency.Question) bool {
	answer = normalize(answer)
	if answer == "" {
		return false
	}

	if q.Format == competency.FormatChoice {
		return checkChoice(answer, q)
	}

	for _, a := range q.Accepted {
		if normalize(a) == answer {
			return true
		}
	}
	if len(q.Keywords) == 0 {
		return false
	}
	padded := " " + strings.Join(words(answer), " ") + " "
	hits := 0
	for _, kw := range q.Keywords {
		if w := words(kw); len(w) > 0 && strings.Contains(padded, " "+strings.Join(w, " ")+" ") {
			hits++
		}
	}
	return float64(hits)/float64(len(q.Keywords)) >= KeywordCoverage
}

func checkChoice(answer string, q competency.Question) bool {
	for i, c := range q.Choices {
		if normalize(c) == answer {
			return i == q.Answer
		}
	}
	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(q.Choices) {
		return idx-1 == q.Answer
	}
	if len(answer) == 1 && answer[0] >= 'a' && int(answer[0]-'a') < len(q.Choices) {
		return int(answer[0]-'a') == q.Answer
	}
	return false
}

// ChoiceText returns the text of the 1-based choice n.
func ChoiceText(q competency.Question, n int) (string, bool) {
	if q.Format != competency.FormatChoice || n < 1 || n > len(q.Choices) {
		return "", false
	}
	return q.Choices[n-1], true
}

// words splits s into lowercase runs of letters and digits.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize lowercases, trims and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), " ")
}
