package gap

import (
	"fmt"
	"math"

	"github.com/abhisek/skillforge/internal/competency"
)

// DefaultHoursPerWeek is assumed when a learner has not set a study budget.
const DefaultHoursPerWeek = 10

// RoadmapItem is one skill to work on, with the resources for it.
type RoadmapItem struct {
	Rank          int                   `json:"rank"`
	SkillID       string                `json:"skill_id"`
	SkillName     string                `json:"skill_name"`
	Target        float64               `json:"target"`
	Estimated     float64               `json:"estimated"`
	Gap           float64               `json:"gap"`
	Priority      Priority              `json:"priority"`
	Stage         Stage                 `json:"stage"`
	Prerequisites []string              `json:"prerequisites,omitempty"`
	Resources     []competency.Resource `json:"resources"`
	WeeksToTarget float64               `json:"weeks_to_target"`
}

// BuildRoadmap maps every record with a positive gap to its catalog
// resources, keeping the priority order. Prerequisites lists the skill's
// prerequisites that are themselves on the roadmap.
func BuildRoadmap(cat *competency.Catalog, records []Record, hoursPerWeek int) []RoadmapItem {
	if hoursPerWeek <= 0 {
		hoursPerWeek = DefaultHoursPerWeek
	}
	onRoadmap := make(map[string]bool)
	for _, r := range records {
		if r.Gap > 0 {
			onRoadmap[r.SkillID] = true
		}
	}

	var items []RoadmapItem
	for _, r := range records {
		if r.Gap <= 0 {
			continue
		}
		item := RoadmapItem{
			Rank:          len(items) + 1,
			SkillID:       r.SkillID,
			SkillName:     r.SkillName,
			Target:        r.Target,
			Estimated:     r.Estimated,
			Gap:           r.Gap,
			Priority:      r.Priority,
			Stage:         StageFor(r.Estimated),
			Resources:     cat.Resources(r.SkillID),
			WeeksToTarget: WeeksToTarget(r.Estimated, r.Target, hoursPerWeek),
		}
		if s, err := cat.Skill(r.SkillID); err == nil {
			for _, pre := range s.Prerequisites {
				if onRoadmap[pre] {
					item.Prerequisites = append(item.Prerequisites, pre)
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// WeeksToTarget estimates study weeks to close a gap. Progress speeds up
// with weekly hours and with the current level. It returns 0 when there is
// no gap and at least 1 otherwise, rounded to one decimal.
func WeeksToTarget(estimate, target float64, hoursPerWeek int) float64 {
	gap10 := (target - estimate) * 10
	if gap10 <= 0 {
		return 0
	}
	rate := 1 + float64(hoursPerWeek)/10 + estimate
	return round(math.Max(1, gap10*3/rate), 1)
}

// StudyOrder returns the roadmap skill IDs reordered so prerequisites come
// before the skills that need them.
func StudyOrder(cat *competency.Catalog, items []RoadmapItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.SkillID
	}
	return cat.LearningOrder(ids)
}

// FormatLevel renders a [0,1] proficiency on the 0-10 display scale.
func FormatLevel(v float64) string {
	return fmt.Sprintf("%.1f", v*10)
}
