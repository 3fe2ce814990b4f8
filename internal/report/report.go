// Package report composes the exportable skill-gap report.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"level":    gap.FormatLevel,
	"gapClass": gapClass,
	"date":     func(t time.Time) string { return t.Format("January 2, 2006") },
	"inc":      func(i int) int { return i + 1 },
}).Parse(reportTemplate))

// Report is everything rendered into one export.
type Report struct {
	ProfileName string
	RoleID      string
	RoleName    string
	GeneratedAt time.Time

	Records   []gap.Record
	Strengths []gap.Record
	Roadmap   []gap.RoadmapItem
	Plan      []gap.Week
	Summary   gap.Summary

	// Commentary is optional AI advice keyed by skill ID.
	Commentary map[string]string
}

// GapCount is the number of skills below target.
func (r *Report) GapCount() int {
	return len(r.Records) - len(r.Strengths)
}

// Build computes the report content for p against roleID.
func Build(agg *assessment.Aggregator, p *profile.Profile, roleID string, now time.Time) (*Report, error) {
	role, err := agg.Catalog().GetRole(roleID)
	if err != nil {
		return nil, err
	}
	records, err := gap.ComputeGaps(agg, p, roleID)
	if err != nil {
		return nil, err
	}

	hours := gap.DefaultHoursPerWeek
	name := profile.GuestName
	if p != nil {
		name = p.Name
		if p.HoursPerWeek > 0 {
			hours = p.HoursPerWeek
		}
	}
	roadmap := gap.BuildRoadmap(agg.Catalog(), records, hours)

	return &Report{
		ProfileName: name,
		RoleID:      role.ID,
		RoleName:    role.Name,
		GeneratedAt: now,
		Records:     records,
		Strengths:   gap.Strengths(records),
		Roadmap:     roadmap,
		Plan:        gap.WeeklyPlan(roadmap, gap.DefaultPlanWeeks),
		Summary:     gap.Summarize(records),
	}, nil
}

// Render writes the report as a standalone HTML document.
func Render(w io.Writer, r *Report) error {
	if err := tmpl.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// RenderBytes renders the report into memory.
func RenderBytes(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the default export file name for a role.
func FileName(roleName string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(roleName), "_"))
	if slug == "" {
		slug = "report"
	}
	return "skillforge_report_" + slug + ".html"
}

// gapClass buckets a gap on the 0-10 display scale.
func gapClass(g float64) string {
	switch {
	case g*10 > 3:
		return "gap-high"
	case g > 0:
		return "gap-some"
	default:
		return "gap-none"
	}
}
