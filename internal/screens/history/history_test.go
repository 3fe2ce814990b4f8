package history

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen/screentest"
	"github.com/abhisek/skillforge/internal/store"
)

func TestHistoryEmpty(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)
	s.Update(s.Init()())

	if !strings.Contains(s.View(80, 24), "No quizzes yet") {
		t.Error("expected empty-state message")
	}
}

func TestHistoryShowsSessions(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	ctx := context.Background()
	for _, id := range []string{"go", "sql"} {
		err := env.Events.AppendQuizSession(ctx, store.QuizSessionEventData{
			ProfileName: env.Profile.Name,
			SessionID:   "s-" + id,
			SkillID:     id,
			State:       "converged",
			Estimate:    0.6,
			Confidence:  0.8,
			Asked:       4,
			Correct:     3,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	s := New(env.Env)
	s.Update(s.Init()())
	if len(s.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(s.sessions))
	}

	view := s.View(100, 24)
	if !strings.Contains(view, "3/4 correct") {
		t.Error("expected score in the view")
	}
	if strings.Contains(view, "Converged") {
		t.Error("details should start collapsed")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 24), "Converged") {
		t.Error("expected details after Enter")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("expected selection 1, got %d", s.selected)
	}
}

func TestHistoryQuit(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
