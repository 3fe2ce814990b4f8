package competency

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniCatalog = `
version: 1.2.0
skills:
  - id: sql
    name: SQL
    category: Data
    importance: 0.9
  - id: statistics
    name: Statistics
    category: Data
roles:
  - id: data-analyst
    name: Data Analyst
    requirements:
      - skill: sql
        level: 0.8
      - skill: statistics
        level: 0.6
resources:
  sql:
    - title: Mode SQL Tutorial
      kind: tutorials
questions:
  - id: sql-1
    skill: sql
    tier: beginner
    prompt: Which clause filters rows?
    choices: [SELECT, WHERE]
    answer: 1
  - id: sql-2
    skill: sql
    tier: expert
    difficulty: 0.95
    format: free_text
    prompt: Name the clause that filters groups.
    accepted: [having]
`

func TestDefault_Loads(t *testing.T) {
	c := Default()
	require.NotNil(t, c)
	assert.Len(t, c.ListRoles(), 8)
	assert.Len(t, c.Skills(), 20)

	r, err := c.GetRole("data-analyst")
	require.NoError(t, err)
	assert.Equal(t, "Data Analyst", r.Name)
	assert.Equal(t, []string{"sql", "python", "statistics", "data-visualization", "machine-learning"}, r.SkillIDs())

	level, ok := r.Required("sql")
	assert.True(t, ok)
	assert.InDelta(t, 0.8, level, 1e-9)
}

func TestDefault_EverySkillHasResourcesOrNoRole(t *testing.T) {
	c := Default()
	for _, role := range c.ListRoles() {
		for _, id := range role.SkillIDs() {
			assert.NotEmpty(t, c.Resources(id), "role %s skill %s has no resources", role.ID, id)
		}
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(miniCatalog))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, c.Importance("statistics"), 1e-9)
	assert.InDelta(t, 0.9, c.Importance("sql"), 1e-9)

	qs := c.Questions("sql")
	require.Len(t, qs, 2)
	assert.Equal(t, FormatChoice, qs[0].Format)
	assert.InDelta(t, TierBeginner.Difficulty(), qs[0].Difficulty, 1e-9)
	assert.InDelta(t, 0.95, qs[1].Difficulty, 1e-9)
	assert.Empty(t, c.Questions("statistics"))
}

func TestGetRole_NotFound(t *testing.T) {
	c := Default()
	_, err := c.GetRole("astronaut")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.Skill("underwater-basket-weaving")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantMsg string
	}{
		{
			name:    "unknown skill in role",
			mutate:  func(s string) string { return strings.Replace(s, "- skill: statistics", "- skill: stats", 1) },
			wantMsg: `unknown skill "stats"`,
		},
		{
			name:    "level out of range",
			mutate:  func(s string) string { return strings.Replace(s, "level: 0.8", "level: 8", 1) },
			wantMsg: "schema validation failed",
		},
		{
			name:    "answer index out of range",
			mutate:  func(s string) string { return strings.Replace(s, "answer: 1", "answer: 5", 1) },
			wantMsg: "out of range",
		},
		{
			name:    "unsupported major version",
			mutate:  func(s string) string { return strings.Replace(s, "version: 1.2.0", "version: 2.0.0", 1) },
			wantMsg: "unsupported catalog version",
		},
		{
			name:    "zero importance",
			mutate:  func(s string) string { return strings.Replace(s, "importance: 0.9", "importance: 0", 1) },
			wantMsg: "schema validation failed",
		},
		{
			name:    "duplicate skill",
			mutate:  func(s string) string { return strings.Replace(s, "id: statistics", "id: sql", 1) },
			wantMsg: "duplicate skill ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.mutate(miniCatalog)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateCatalog_DetectsCycle(t *testing.T) {
	c := &Catalog{
		Version: "1.0.0",
		SkillList: []Skill{
			{ID: "a", Name: "A", Prerequisites: []string{"b"}},
			{ID: "b", Name: "B", Prerequisites: []string{"a"}},
		},
	}
	err := validateCatalog(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestLearningOrder_PrerequisitesFirst(t *testing.T) {
	c := Default()
	got := c.LearningOrder([]string{"deep-learning", "git", "machine-learning", "python"})
	assert.Equal(t, []string{"git", "python", "machine-learning", "deep-learning"}, got)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		level float64
		want  Tier
	}{
		{0, TierBeginner},
		{0.3, TierBeginner},
		{0.4, TierIntermediate},
		{0.6, TierAdvanced},
		{0.8, TierExpert},
	}
	for _, tt := range tests {
		if got := TierFor(tt.level); got != tt.want {
			t.Errorf("TierFor(%v) = %s, want %s", tt.level, got, tt.want)
		}
	}
}
