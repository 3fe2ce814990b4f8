package rating

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/screen/screentest"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestRowsGroupedByCategory(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	// Three categories, one skill each.
	if len(s.rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(s.rows))
	}
	if s.rows[0].kind != rowCategoryHeader || s.rows[0].category != "Languages" {
		t.Errorf("expected Languages header first, got %+v", s.rows[0])
	}
	if s.rows[s.cursor].skill.ID != "go" {
		t.Errorf("expected cursor on go, got %q", s.rows[s.cursor].skill.ID)
	}
}

func TestDigitRatesAndSaves(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	s.Update(keyPress('4'))

	r, ok := env.Profile.Rating("go")
	if !ok || r.Value != 4 {
		t.Fatalf("expected go rated 4, got %+v (ok=%v)", r, ok)
	}
	saved, err := env.Repo.Get(context.Background(), env.Profile.Key())
	if err != nil {
		t.Fatalf("profile not saved: %v", err)
	}
	if got, _ := saved.Rating("go"); got.Value != 4 {
		t.Errorf("saved rating %d, want 4", got.Value)
	}
	if !strings.Contains(s.status, "Strong") {
		t.Errorf("unexpected status %q", s.status)
	}
}

func TestOutOfScaleDigitIgnored(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	s.Update(keyPress('9'))
	if _, ok := env.Profile.Rating("go"); ok {
		t.Error("out-of-scale digit should not rate")
	}
}

func TestNudge(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	s.Update(specialKey(tea.KeyRight))
	if r, _ := env.Profile.Rating("go"); r.Value != 1 {
		t.Errorf("first nudge should start at 1, got %d", r.Value)
	}
	s.Update(specialKey(tea.KeyRight))
	if r, _ := env.Profile.Rating("go"); r.Value != 2 {
		t.Errorf("expected 2, got %d", r.Value)
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if r, _ := env.Profile.Rating("go"); r.Value != 1 {
		t.Errorf("rating should stop at 1, got %d", r.Value)
	}
}

func TestCursorSkipsHeaders(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	s.Update(specialKey(tea.KeyDown))
	if s.rows[s.cursor].kind != rowSkill || s.rows[s.cursor].skill.ID != "sql" {
		t.Errorf("expected cursor on sql, got row %d", s.cursor)
	}
	s.Update(specialKey(tea.KeyTab))
	if s.rows[s.cursor].skill.ID != "k8s" {
		t.Errorf("expected tab to jump to k8s, got %q", s.rows[s.cursor].skill.ID)
	}
}

func TestNoRole(t *testing.T) {
	env := screentest.NewEnv(t, "")
	s := New(env.Env)

	if len(s.rows) != 0 {
		t.Errorf("expected no rows without a role, got %d", len(s.rows))
	}
	s.Update(keyPress('3'))
	if len(env.Profile.SelfRatings) != 0 {
		t.Error("nothing should be rated without a role")
	}
}
