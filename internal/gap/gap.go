// Package gap compares skill estimates against a role profile and turns the
// shortfalls into a prioritized learning roadmap.
package gap

import (
	"math"
	"sort"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
)

// GapPrecision is the number of decimal places gaps are rounded to.
const GapPrecision = 4

// Record is the comparison of one required skill against its estimate.
type Record struct {
	SkillID       string   `json:"skill_id"`
	SkillName     string   `json:"skill_name"`
	Target        float64  `json:"target"`
	Estimated     float64  `json:"estimated"`
	Gap           float64  `json:"gap"`
	Surplus       float64  `json:"surplus,omitempty"`
	Strength      bool     `json:"strength"`
	Importance    float64  `json:"importance"`
	PriorityScore float64  `json:"priority_score"`
	Priority      Priority `json:"priority"`
	Rank          int      `json:"rank"`
}

// ComputeGaps estimates every skill the role requires and returns the gap
// records in priority order. An unknown role yields competency.ErrNotFound.
func ComputeGaps(agg *assessment.Aggregator, p *profile.Profile, roleID string) ([]Record, error) {
	cat := agg.Catalog()
	role, err := cat.GetRole(roleID)
	if err != nil {
		return nil, err
	}
	estimates, err := agg.Estimates(p, role.SkillIDs())
	if err != nil {
		return nil, err
	}
	return Compute(cat, role, estimates), nil
}

// Compute builds gap records for role from estimates. Skills missing from
// estimates count as 0. The result is sorted by descending gap, then
// descending importance, then skill ID, and ranked from 1.
func Compute(cat *competency.Catalog, role competency.RoleProfile, estimates map[string]float64) []Record {
	records := make([]Record, 0, len(role.Requirements))
	for _, req := range role.Requirements {
		est := estimates[req.SkillID]
		r := Record{
			SkillID:    req.SkillID,
			SkillName:  req.SkillID,
			Target:     req.Level,
			Estimated:  est,
			Gap:        round(math.Max(req.Level-est, 0), GapPrecision),
			Importance: cat.Importance(req.SkillID),
		}
		if s, err := cat.Skill(req.SkillID); err == nil {
			r.SkillName = s.Name
		}
		if r.Gap == 0 {
			r.Strength = true
			r.Surplus = round(math.Max(est-req.Level, 0), GapPrecision)
		}
		r.PriorityScore = PriorityScore(r.Gap, r.Target)
		r.Priority = PriorityFor(r.PriorityScore)
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Gap != b.Gap {
			return a.Gap > b.Gap
		}
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		return a.SkillID < b.SkillID
	})
	for i := range records {
		records[i].Rank = i + 1
	}
	return records
}

// Strengths returns the records where the estimate meets the target, in
// rank order.
func Strengths(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Strength {
			out = append(out, r)
		}
	}
	return out
}

// Gaps returns the records with a positive gap, in rank order.
func Gaps(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Gap > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Readiness is the share of required proficiency already covered, as a
// percentage with one decimal. A role with no requirements is fully ready.
func Readiness(records []Record) float64 {
	var have, need float64
	for _, r := range records {
		have += math.Min(r.Estimated, r.Target)
		need += r.Target
	}
	if need == 0 {
		return 100
	}
	return round(have/need*100, 1)
}

// TotalGap sums the gaps of all records.
func TotalGap(records []Record) float64 {
	total := 0.0
	for _, r := range records {
		total += r.Gap
	}
	return round(total, GapPrecision)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
