package gap

import (
	"context"
	"strings"
	"testing"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `version: 1.0.0
skills:
  - {id: python, name: Python}
  - {id: sql, name: SQL, prerequisites: [python]}
  - {id: statistics, name: Statistics}
  - {id: alpha, name: Alpha, importance: 0.5}
  - {id: beta, name: Beta, importance: 0.9}
  - {id: gamma, name: Gamma, importance: 0.9}
roles:
  - id: data-analyst
    name: Data Analyst
    requirements:
      - {skill: sql, level: 0.8}
      - {skill: statistics, level: 0.6}
  - id: ties
    name: Ties
    requirements:
      - {skill: alpha, level: 0.5}
      - {skill: gamma, level: 0.5}
      - {skill: beta, level: 0.5}
  - id: engineer
    name: Engineer
    requirements:
      - {skill: sql, level: 0.7}
      - {skill: python, level: 0.9}
resources:
  sql:
    - {title: SQL Course, kind: course, duration: 4 weeks, platform: Web}
`

func setup(t *testing.T) (*competency.Catalog, *assessment.Aggregator) {
	t.Helper()
	cat, err := competency.Load(strings.NewReader(testCatalogYAML))
	require.NoError(t, err)
	return cat, assessment.NewAggregator(cat, quiz.DefaultConfig())
}

func TestComputeGaps_DataAnalystScenario(t *testing.T) {
	_, agg := setup(t)
	p := profile.New("u")
	require.NoError(t, agg.RecordSelfRating(p, "sql", 3))
	require.NoError(t, agg.RecordSelfRating(p, "statistics", 5))

	records, err := ComputeGaps(agg, p, "data-analyst")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "sql", records[0].SkillID)
	assert.Equal(t, 0.2, records[0].Gap)
	assert.Equal(t, 1, records[0].Rank)
	assert.False(t, records[0].Strength)

	assert.Equal(t, "statistics", records[1].SkillID)
	assert.Equal(t, 0.0, records[1].Gap)
	assert.Equal(t, 2, records[1].Rank)
	assert.True(t, records[1].Strength)
	assert.Equal(t, 0.4, records[1].Surplus)

	assert.Equal(t, 85.7, Readiness(records))
	assert.Equal(t, PriorityMedium, records[0].Priority)
}

func TestComputeGaps_AbsentUser(t *testing.T) {
	cat, agg := setup(t)
	repo := profile.NewMemoryRepo(profile.NewCodec(cat))

	stored, err := repo.Get(context.Background(), profile.Key("nobody"))
	require.NoError(t, err)
	assert.Nil(t, stored)

	p, err := profile.LoadOrNew(context.Background(), repo, "nobody")
	require.NoError(t, err)

	for _, role := range cat.ListRoles() {
		records, err := ComputeGaps(agg, p, role.ID)
		require.NoError(t, err)
		require.Len(t, records, len(role.Requirements))
		for _, r := range records {
			want, _ := role.Required(r.SkillID)
			assert.Equal(t, want, r.Gap, "%s/%s", role.ID, r.SkillID)
			assert.Equal(t, 0.0, r.Estimated)
		}
	}
}

func TestComputeGaps_UnknownRole(t *testing.T) {
	_, agg := setup(t)
	_, err := ComputeGaps(agg, profile.New("u"), "astronaut")
	assert.ErrorIs(t, err, competency.ErrNotFound)
}

func TestCompute_NeverNegativeAndSorted(t *testing.T) {
	cat, _ := setup(t)
	role, err := cat.GetRole("engineer")
	require.NoError(t, err)

	cases := []map[string]float64{
		{},
		{"sql": 1, "python": 1},
		{"sql": 0.1, "python": 0.95},
		{"sql": 0.7, "python": 0.2},
	}
	for _, est := range cases {
		records := Compute(cat, role, est)
		for i, r := range records {
			assert.GreaterOrEqual(t, r.Gap, 0.0)
			assert.Equal(t, i+1, r.Rank)
			if i > 0 {
				assert.GreaterOrEqual(t, records[i-1].Gap, r.Gap)
			}
			if est[r.SkillID] >= r.Target {
				assert.True(t, r.Strength)
				assert.Equal(t, 0.0, r.Gap)
			}
		}
	}
}

func TestCompute_TieBreakDeterministic(t *testing.T) {
	cat, _ := setup(t)
	role, err := cat.GetRole("ties")
	require.NoError(t, err)

	first := Compute(cat, role, nil)
	ids := func(rs []Record) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.SkillID
		}
		return out
	}
	assert.Equal(t, []string{"beta", "gamma", "alpha"}, ids(first))
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Compute(cat, role, nil))
	}
}

func TestBuildRoadmap(t *testing.T) {
	cat, _ := setup(t)
	role, err := cat.GetRole("engineer")
	require.NoError(t, err)

	records := Compute(cat, role, map[string]float64{"sql": 0.2, "python": 0.8})
	items := BuildRoadmap(cat, records, 0)
	require.Len(t, items, 2)

	assert.Equal(t, "sql", items[0].SkillID)
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, []string{"python"}, items[0].Prerequisites)
	require.Len(t, items[0].Resources, 1)
	assert.Equal(t, "SQL Course", items[0].Resources[0].Title)
	assert.Equal(t, StageBeginner, items[0].Stage)
	assert.Equal(t, 6.8, items[0].WeeksToTarget)

	assert.Equal(t, "python", items[1].SkillID)
	assert.Empty(t, items[1].Resources)
	assert.Equal(t, StageAdvanced, items[1].Stage)

	assert.Equal(t, []string{"python", "sql"}, StudyOrder(cat, items))

	noGaps := Compute(cat, role, map[string]float64{"sql": 1, "python": 1})
	assert.Empty(t, BuildRoadmap(cat, noGaps, 10))
}

func TestWeeksToTarget(t *testing.T) {
	tests := []struct {
		est, target float64
		hours       int
		want        float64
	}{
		{0.2, 0.8, 10, 8.2},
		{0.2, 0.8, 30, 4.3},
		{0.5, 0.5, 10, 0},
		{0.9, 0.5, 10, 0},
		{0.75, 0.8, 10, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeeksToTarget(tt.est, tt.target, tt.hours), "%v", tt)
	}
}

func TestPriorityAndStage(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityFor(PriorityScore(0.5, 0.9)))
	assert.Equal(t, PriorityMedium, PriorityFor(PriorityScore(0.2, 0.8)))
	assert.Equal(t, PriorityLow, PriorityFor(PriorityScore(0.1, 0.5)))
	assert.Equal(t, PriorityLow, PriorityFor(0))

	assert.Equal(t, StageBeginner, StageFor(0))
	assert.Equal(t, StageBeginner, StageFor(0.3))
	assert.Equal(t, StageIntermediate, StageFor(0.6))
	assert.Equal(t, StageAdvanced, StageFor(0.61))
}

func TestWeeklyPlan(t *testing.T) {
	items := make([]RoadmapItem, 5)
	for i := range items {
		items[i] = RoadmapItem{SkillID: string(rune('a' + i)), SkillName: strings.ToUpper(string(rune('a' + i)))}
	}

	plan := WeeklyPlan(items, 4)
	require.Len(t, plan, 4)
	assert.Len(t, plan[0].Focus, 1)
	assert.Len(t, plan[3].Focus, 2)
	assert.Len(t, plan[0].DailyTargets, StudyDaysPerWeek+1)
	assert.Equal(t, "Day 1: Study A (2-3 hours)", plan[0].DailyTargets[0])
	assert.Equal(t, "Day 2: Study E (2-3 hours)", plan[3].DailyTargets[1])
	assert.Equal(t, "Day 7: Review & Practice", plan[0].DailyTargets[6])

	short := WeeklyPlan(items[:2], 4)
	require.Len(t, short, 4)
	assert.Empty(t, short[2].Focus)
	assert.Len(t, short[2].DailyTargets, StudyDaysPerWeek+1)

	assert.Nil(t, WeeklyPlan(nil, 4))
}

func TestSummarize(t *testing.T) {
	cat, _ := setup(t)
	role, err := cat.GetRole("engineer")
	require.NoError(t, err)

	s := Summarize(Compute(cat, role, map[string]float64{"sql": 0.1, "python": 0.9}))
	require.Len(t, s.ImmediateActions, 1)
	assert.Equal(t, "Start with SQL: 6.0 levels to improve", s.ImmediateActions[0].Text)
	assert.Equal(t, "High", s.ImmediateActions[0].Effort)
	assert.Equal(t, 1, s.StrengthCount)
	assert.Equal(t, "2-4 weeks to reach target proficiency", s.Timeline)

	s = Summarize(Compute(cat, role, nil))
	assert.Equal(t, "8-12 weeks to reach target proficiency", s.Timeline)
	assert.Equal(t, 0.0, s.Readiness)
}
