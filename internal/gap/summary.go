package gap

import "fmt"

// MaxImmediateActions is the number of top gaps turned into actions.
const MaxImmediateActions = 3

// Action is a suggested next step for one skill.
type Action struct {
	SkillID string `json:"skill_id"`
	Text    string `json:"action"`
	Effort  string `json:"effort"`
}

// Summary is a short recommendation derived from gap records.
type Summary struct {
	Readiness        float64  `json:"readiness"`
	TotalGap         float64  `json:"total_gap"`
	ImmediateActions []Action `json:"immediate_actions"`
	StrengthCount    int      `json:"strength_count"`
	Timeline         string   `json:"timeline_estimate"`
}

// Summarize builds the recommendation summary for ranked records.
func Summarize(records []Record) Summary {
	s := Summary{
		Readiness:     Readiness(records),
		TotalGap:      TotalGap(records),
		StrengthCount: len(Strengths(records)),
	}
	for _, r := range Gaps(records) {
		if len(s.ImmediateActions) == MaxImmediateActions {
			break
		}
		effort := "Medium"
		if r.Gap >= 0.5 {
			effort = "High"
		}
		s.ImmediateActions = append(s.ImmediateActions, Action{
			SkillID: r.SkillID,
			Text:    fmt.Sprintf("Start with %s: %s levels to improve", r.SkillName, FormatLevel(r.Gap)),
			Effort:  effort,
		})
	}
	s.Timeline = Timeline(s.TotalGap)
	return s
}

// Timeline gives a rough duration for closing a total gap.
func Timeline(totalGap float64) string {
	switch {
	case totalGap == 0:
		return "Ready for this role"
	case totalGap >= 1.5:
		return "8-12 weeks to reach target proficiency"
	case totalGap >= 0.8:
		return "4-8 weeks to reach target proficiency"
	default:
		return "2-4 weeks to reach target proficiency"
	}
}
