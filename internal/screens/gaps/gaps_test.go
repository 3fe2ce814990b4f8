package gaps

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen/screentest"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestGapsWithoutRole(t *testing.T) {
	env := screentest.NewEnv(t, "")
	s := New(env.Env)

	if !strings.Contains(s.View(80, 24), "Pick a target role first.") {
		t.Error("expected a hint to pick a role")
	}
	if _, cmd := s.Update(keyPress('r')); cmd != nil {
		t.Error("roadmap should not open without a role")
	}
}

func TestGapsReport(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	if len(s.records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(s.records))
	}
	view := s.View(100, 40)
	for _, want := range []string{"Backend Engineer", "Readiness", "Next steps", "Go", "SQL", "Kubernetes"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in the report", want)
		}
	}
}

func TestGapsOpensRoadmap(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := New(env.Env)

	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if msg.Screen.Title() != "Roadmap" {
		t.Errorf("expected roadmap screen, got %q", msg.Screen.Title())
	}
}

func TestRoadmapExpand(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := NewRoadmap(env.Env)

	if len(s.items) != 3 {
		t.Fatalf("expected 3 roadmap items, got %d", len(s.items))
	}
	if strings.Contains(s.View(100, 60), "Stage:") {
		t.Error("items should start collapsed")
	}
	s.Update(specialKey(tea.KeyEnter))
	if !s.expanded[0] {
		t.Fatal("expected first item expanded")
	}
	if !strings.Contains(s.View(100, 60), "Stage:") {
		t.Error("expected stage details for the expanded item")
	}

	s.Update(specialKey(tea.KeyDown))
	if s.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", s.cursor)
	}
}

func TestRoadmapWeeklyToggle(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := NewRoadmap(env.Env)

	s.Update(keyPress('w'))
	if s.Title() != "Weekly Plan" {
		t.Errorf("expected weekly plan, got %q", s.Title())
	}
	if !strings.Contains(s.View(100, 60), "Week 1") {
		t.Error("expected week headings")
	}
	s.Update(keyPress('w'))
	if s.Title() != "Roadmap" {
		t.Errorf("expected roadmap, got %q", s.Title())
	}
}

func TestRoadmapAdviceWithoutProvider(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := NewRoadmap(env.Env)

	_, cmd := s.Update(keyPress('a'))
	if cmd != nil {
		t.Error("no advisor call expected without a provider")
	}
	if !strings.Contains(s.status, "LLM provider") {
		t.Errorf("unexpected status %q", s.status)
	}
}

func TestRoadmapCommentary(t *testing.T) {
	env := screentest.NewEnv(t, "backend")
	s := NewRoadmap(env.Env)
	s.enriching = true

	s.Update(commentaryMsg{Commentary: advisor.Commentary{s.items[0].SkillID: "Build a small HTTP service."}})
	if s.enriching {
		t.Error("expected enriching to stop")
	}
	if !s.expanded[0] {
		t.Error("expected commented item expanded")
	}
	if !strings.Contains(s.View(100, 60), "Build a small HTTP service.") {
		t.Error("expected commentary in the view")
	}
}
