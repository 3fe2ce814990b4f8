package quiz

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/competency"
	qz "github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen/screentest"
	"github.com/abhisek/skillforge/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// startedQuiz returns a quiz screen with its plan loaded.
func startedQuiz(t *testing.T) (*QuizScreen, *screentest.Env) {
	t.Helper()
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)
	s.Update(s.initQuiz()())
	if s.errMsg != "" {
		t.Fatalf("unexpected init error: %s", s.errMsg)
	}
	return s, env
}

// answer submits a correct answer for the current question and applies
// the grade.
func answer(t *testing.T, s *QuizScreen) {
	t.Helper()
	if s.question.Format == competency.FormatChoice {
		s.Update(keyPress('1'))
	} else {
		for _, r := range "join" {
			s.Update(keyPress(r))
		}
		s.Update(specialKey(tea.KeyEnter))
	}
	if s.phase != phaseGrading {
		t.Fatalf("expected grading phase after submit, got %d", s.phase)
	}
	s.Update(answerGradedMsg{Answer: s.question.CorrectText(), Grade: qz.Grade{Correct: true, GradedBy: "test"}})
	if s.phase != phaseFeedback {
		t.Fatalf("expected feedback phase, got %d", s.phase)
	}
}

func TestQuizWithoutRoleShowsError(t *testing.T) {
	env := screentest.NewEnv(t, "")
	s := New(env.Env)
	s.Update(s.initQuiz()())

	if s.errMsg == "" {
		t.Fatal("expected an error without a target role")
	}
	if s.InterceptsBack() {
		t.Error("error state should not intercept Esc")
	}
	_, cmd := s.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg from the error state")
	}
}

func TestQuizStartsWithFirstQuestion(t *testing.T) {
	s, _ := startedQuiz(t)

	if s.phase != phaseQuestion {
		t.Fatalf("expected question phase, got %d", s.phase)
	}
	if s.question.SkillID != "go" {
		t.Errorf("expected first question for go, got %q", s.question.SkillID)
	}
	if !s.InterceptsBack() {
		t.Error("running quiz should intercept Esc")
	}
	if !strings.Contains(s.View(80, 24), s.question.Prompt) {
		t.Error("expected the prompt in the view")
	}
}

func TestQuitConfirmDismiss(t *testing.T) {
	s, _ := startedQuiz(t)

	s.Update(specialKey(tea.KeyEscape))
	if !s.quitConfirm {
		t.Fatal("expected quit confirmation dialog")
	}
	s.Update(keyPress('n'))
	if s.quitConfirm {
		t.Error("expected quit confirmation to be dismissed")
	}
	if s.phase != phaseQuestion {
		t.Errorf("expected to stay on the question, got phase %d", s.phase)
	}
}

func TestQuitBeforeFinishingClosesScreen(t *testing.T) {
	s, env := startedQuiz(t)

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg when no skill finished")
	}
	if len(env.Profile.QuizHistory) != 0 {
		t.Errorf("abandoned skill should not save responses, got %d", len(env.Profile.QuizHistory))
	}
}

func TestGradeIgnoredOutsideGrading(t *testing.T) {
	s, _ := startedQuiz(t)

	s.Update(answerGradedMsg{Answer: "a", Grade: qz.Grade{Correct: true}})
	if s.phase != phaseQuestion {
		t.Errorf("stray grade should be ignored, got phase %d", s.phase)
	}
}

func TestFeedbackKeyAdvances(t *testing.T) {
	s, _ := startedQuiz(t)

	answer(t, s)
	if !s.feedback.Correct {
		t.Error("expected correct feedback")
	}
	if !strings.Contains(s.View(80, 24), "Correct!") {
		t.Error("expected feedback in the view")
	}
	s.Update(keyPress(' '))
	if s.phase == phaseFeedback {
		t.Error("expected a key to leave the feedback phase")
	}
}

func TestFullQuizRun(t *testing.T) {
	s, env := startedQuiz(t)

	var final tea.Msg
	for i := 0; i < 50 && final == nil; i++ {
		answer(t, s)
		_, cmd := s.Update(keyPress(' '))
		if s.phase == phaseDone {
			if cmd == nil {
				t.Fatal("expected a command when the quiz ends")
			}
			final = cmd()
		}
	}

	msg, ok := final.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", final)
	}
	if msg.Screen.Title() != "Quiz Summary" {
		t.Errorf("expected summary screen, got %q", msg.Screen.Title())
	}

	if len(s.summary.Skills) != 3 {
		t.Fatalf("expected 3 skill results, got %d", len(s.summary.Skills))
	}
	skipped := 0
	for _, sr := range s.summary.Skills {
		if sr.Skipped {
			skipped++
			if sr.SkillName != "Kubernetes" {
				t.Errorf("unexpected skipped skill %q", sr.SkillName)
			}
		}
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped skill, got %d", skipped)
	}
	if s.summary.ReadinessAfter <= s.summary.ReadinessBefore {
		t.Errorf("readiness should rise after correct answers: %.1f -> %.1f",
			s.summary.ReadinessBefore, s.summary.ReadinessAfter)
	}

	if len(env.Profile.QuizHistory) == 0 {
		t.Error("expected responses in the profile")
	}
	saved, err := env.Repo.Get(context.Background(), env.Profile.Key())
	if err != nil {
		t.Fatalf("profile not saved: %v", err)
	}
	if len(saved.QuizHistory) != len(env.Profile.QuizHistory) {
		t.Errorf("saved history %d, want %d", len(saved.QuizHistory), len(env.Profile.QuizHistory))
	}

	events, err := env.Events.QuizSessions(context.Background(), env.Profile.Name, "", store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 quiz session events, got %d", len(events))
	}
}
