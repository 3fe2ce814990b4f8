// Package screentest builds screen environments for tests.
package screentest

import (
	"strings"
	"testing"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/stretchr/testify/require"
)

// CatalogYAML has one role, backend, requiring:
//   - go: three choice questions, answer is always the first choice "a"
//   - sql: one free-text question accepting "join"
//   - k8s: no questions
const CatalogYAML = `version: 1.0.0
skills:
  - {id: go, name: Go, category: Languages}
  - {id: sql, name: SQL, category: Data}
  - {id: k8s, name: Kubernetes, category: Ops, prerequisites: [go]}
roles:
  - id: backend
    name: Backend Engineer
    description: Builds services.
    requirements:
      - {skill: go, level: 0.8}
      - {skill: sql, level: 0.6}
      - {skill: k8s, level: 0.5}
  - id: dba
    name: Database Administrator
    requirements:
      - {skill: sql, level: 0.9}
resources:
  go:
    - {title: Tour of Go, kind: tutorials, duration: 1 week, platform: Web}
questions:
  - {id: g1, skill: go, tier: beginner, difficulty: 0.2, prompt: "g1?", choices: [a, b], answer: 0}
  - {id: g2, skill: go, tier: intermediate, difficulty: 0.4, prompt: "g2?", choices: [a, b], answer: 0}
  - {id: g3, skill: go, tier: advanced, difficulty: 0.6, prompt: "g3?", choices: [a, b], answer: 0}
  - {id: s1, skill: sql, tier: beginner, format: free_text, prompt: "combine tables?", accepted: [join]}
`

// Env is a screen environment backed by in-memory stores.
type Env struct {
	*screen.Env
	Repo   *profile.MemoryRepo
	Events store.EventRepo
}

// NewEnv returns an environment for a fresh profile named "ada". When
// roleID is not empty it is selected.
func NewEnv(t *testing.T, roleID string) *Env {
	t.Helper()
	cat, err := competency.Load(strings.NewReader(CatalogYAML))
	require.NoError(t, err)

	st, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	repo := profile.NewMemoryRepo(profile.NewCodec(cat))
	p := profile.New("ada")
	p.SelectedRole = roleID
	events := st.EventRepo()

	return &Env{
		Env: &screen.Env{
			Aggregator: assessment.NewAggregator(cat, quiz.DefaultConfig()),
			Profiles:   repo,
			Events:     events,
			Advisor:    advisor.New(cat, nil, advisor.DefaultConfig()),
			Grader:     quiz.RuleGrader{},
			QuizConfig: quiz.DefaultConfig(),
			Profile:    p,
		},
		Repo:   repo,
		Events: events,
	}
}
