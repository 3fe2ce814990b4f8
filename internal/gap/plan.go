package gap

import "fmt"

// DefaultPlanWeeks is the length of a generated weekly plan.
const DefaultPlanWeeks = 4

// StudyDaysPerWeek is the number of study days before the review day.
const StudyDaysPerWeek = 6

// FocusArea is one skill scheduled in a week.
type FocusArea struct {
	SkillID   string   `json:"skill_id"`
	SkillName string   `json:"skill_name"`
	Current   float64  `json:"current"`
	Target    float64  `json:"target"`
	Stage     Stage    `json:"stage"`
	Priority  Priority `json:"priority"`
}

// Week is one week of a learning plan.
type Week struct {
	Number       int         `json:"week"`
	Focus        []FocusArea `json:"focus_areas"`
	DailyTargets []string    `json:"daily_targets"`
}

// WeeklyPlan spreads roadmap items over weeks in order. Each week gets the
// same number of skills and the last week takes the remainder.
func WeeklyPlan(items []RoadmapItem, weeks int) []Week {
	if len(items) == 0 {
		return nil
	}
	if weeks <= 0 {
		weeks = DefaultPlanWeeks
	}
	perWeek := max(1, len(items)/weeks)

	plan := make([]Week, 0, weeks)
	for n := 1; n <= weeks; n++ {
		start := min((n-1)*perWeek, len(items))
		end := min(start+perWeek, len(items))
		if n == weeks {
			end = len(items)
		}
		week := Week{Number: n}
		for _, it := range items[start:end] {
			week.Focus = append(week.Focus, FocusArea{
				SkillID:   it.SkillID,
				SkillName: it.SkillName,
				Current:   it.Estimated,
				Target:    it.Target,
				Stage:     it.Stage,
				Priority:  it.Priority,
			})
		}
		for d := 1; d <= StudyDaysPerWeek; d++ {
			if len(week.Focus) == 0 {
				week.DailyTargets = append(week.DailyTargets, fmt.Sprintf("Day %d: Practice and revisit earlier topics", d))
				continue
			}
			f := week.Focus[(d-1)%len(week.Focus)]
			week.DailyTargets = append(week.DailyTargets, fmt.Sprintf("Day %d: Study %s (2-3 hours)", d, f.SkillName))
		}
		week.DailyTargets = append(week.DailyTargets, fmt.Sprintf("Day %d: Review & Practice", StudyDaysPerWeek+1))
		plan = append(plan, week)
	}
	return plan
}
