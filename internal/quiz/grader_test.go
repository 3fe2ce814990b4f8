package quiz

import (
	"context"
	"testing"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAnswer(t *testing.T) {
	choice := competency.Question{
		Format:  competency.FormatChoice,
		Choices: []string{"SELECT", "Group By", "JOIN"},
		Answer:  1,
	}
	free := competency.Question{
		Format:   competency.FormatFreeText,
		Accepted: []string{"Primary Key"},
		Keywords: []string{"unique", "identifier", "row", "null"},
	}
	acceptedOnly := competency.Question{
		Format:   competency.FormatFreeText,
		Accepted: []string{"git rebase"},
	}

	tests := []struct {
		name   string
		q      competency.Question
		answer string
		want   bool
	}{
		{"choice number", choice, "2", true},
		{"choice number wrong", choice, "1", false},
		{"choice number out of range", choice, "7", false},
		{"choice letter", choice, "B", true},
		{"choice letter wrong", choice, "c", false},
		{"choice text", choice, "  group   by ", true},
		{"choice text wrong", choice, "join", false},
		{"empty", choice, "   ", false},
		{"free accepted", free, "primary key", true},
		{"free keywords half", free, "A unique identifier", true},
		{"free keywords too few", free, "it is unique", false},
		{"free accepted only", acceptedOnly, "Git  Rebase", true},
		{"free accepted only miss", acceptedOnly, "git merge", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckAnswer(tt.answer, tt.q))
		})
	}
}

func TestCheckAnswer_NumericChoiceText(t *testing.T) {
	cat := competency.Default()
	tests := []struct {
		id     string
		answer string
		want   bool
	}{
		{"statistics-b1", "4", true},
		{"statistics-b1", "2", false},
		{"statistics-b1", "12", false},
		{"python-b3", "5", true},
		{"python-b3", "4", false},
		{"python-b3", "error", false},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.answer, func(t *testing.T) {
			q, err := cat.Question(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, CheckAnswer(tt.answer, q))
		})
	}
}

func TestCheckAnswer_KeywordsMatchWholeWords(t *testing.T) {
	q := competency.Question{
		Format:   competency.FormatFreeText,
		Keywords: []string{"ml", "model training"},
	}
	assert.False(t, CheckAnswer("I write html pages", q))
	assert.True(t, CheckAnswer("Classic ML work", q))
	assert.True(t, CheckAnswer("model-training pipelines", q))
	assert.False(t, CheckAnswer("a model for training", q))
}

func TestChoiceText(t *testing.T) {
	q := competency.Question{Format: competency.FormatChoice, Choices: []string{"2", "4"}}
	text, ok := ChoiceText(q, 2)
	assert.True(t, ok)
	assert.Equal(t, "4", text)

	_, ok = ChoiceText(q, 3)
	assert.False(t, ok)
	_, ok = ChoiceText(competency.Question{Format: competency.FormatFreeText}, 1)
	assert.False(t, ok)
}

func TestRuleGrader_Label(t *testing.T) {
	g, err := RuleGrader{}.Grade(context.Background(), competency.Question{
		Format:  competency.FormatChoice,
		Choices: []string{"x", "y"},
	}, "1")
	require.NoError(t, err)
	assert.True(t, g.Correct)
	assert.Equal(t, GradedByRules, g.GradedBy)
}

func TestBuildGradeMessage(t *testing.T) {
	msg, err := buildGradeMessage(competency.Question{
		Prompt:   "What is a primary key?",
		Accepted: []string{"a unique row identifier"},
		Keywords: []string{"unique", "row"},
	}, "it identifies rows")
	require.NoError(t, err)
	assert.Contains(t, msg, "Question: What is a primary key?")
	assert.Contains(t, msg, "Reference answers: a unique row identifier")
	assert.Contains(t, msg, "Key concepts: unique, row")
	assert.Contains(t, msg, "User's answer: it identifies rows")
}
