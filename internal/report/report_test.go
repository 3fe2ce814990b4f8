package report

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportDate = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func analystReport(t *testing.T) *Report {
	t.Helper()
	agg := assessment.NewAggregator(competency.Default(), quiz.DefaultConfig())
	p := profile.New("Ada <Lovelace>")
	require.NoError(t, agg.RecordSelfRating(p, "sql", 3))
	require.NoError(t, agg.RecordSelfRating(p, "statistics", 5))

	r, err := Build(agg, p, "data-analyst", reportDate)
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := analystReport(t)

	assert.Equal(t, "Data Analyst", r.RoleName)
	require.Len(t, r.Records, 5)
	assert.Equal(t, "data-visualization", r.Records[0].SkillID)
	assert.Equal(t, "statistics", r.Records[4].SkillID)
	require.Len(t, r.Strengths, 1)
	assert.Equal(t, 4, r.GapCount())
	assert.Len(t, r.Roadmap, 4)
	assert.Len(t, r.Plan, 4)
	assert.Len(t, r.Summary.ImmediateActions, 3)
}

func TestBuild_UnknownRole(t *testing.T) {
	agg := assessment.NewAggregator(competency.Default(), quiz.DefaultConfig())
	_, err := Build(agg, profile.New("x"), "astronaut", reportDate)
	assert.True(t, errors.Is(err, competency.ErrNotFound))
}

func TestRender(t *testing.T) {
	r := analystReport(t)
	r.Commentary = map[string]string{"sql": "Practice window functions daily."}

	out, err := RenderBytes(r)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Target Role:</b> Data Analyst")
	assert.Contains(t, html, "March 14, 2026")
	assert.Contains(t, html, "Ada &lt;Lovelace&gt;")
	assert.NotContains(t, html, "<Lovelace>")
	assert.Contains(t, html, "<b>Statistics</b>: level 10.0 (+3.0 above target)")
	assert.Contains(t, html, `class="gap-high">8.0</td>`)
	assert.Contains(t, html, `class="gap-some">2.0</td>`)
	assert.Contains(t, html, "Practice window functions daily.")
	assert.Contains(t, html, "Week 4")
}

func TestRender_NoCommentary(t *testing.T) {
	r := analystReport(t)
	out, err := RenderBytes(r)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `class="advice"`)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "skillforge_report_data_analyst.html", FileName("Data Analyst"))
	assert.Equal(t, "skillforge_report_ml_engineer.html", FileName("  ML   Engineer "))
	assert.Equal(t, "skillforge_report_report.html", FileName(""))
}

func TestCompress_RoundTrip(t *testing.T) {
	in := []byte(strings.Repeat("<tr><td>SQL</td></tr>", 200))
	packed, err := Compress(in)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(in))

	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(packed)))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestPublish_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PublishConfig
		wantErr string
	}{
		{"no host", PublishConfig{}, "not configured"},
		{"no credentials", PublishConfig{Host: "h", User: "u"}, "password or key file"},
		{"no host key policy", PublishConfig{Host: "h", User: "u", Password: "p"}, "known_hosts is required"},
		{"missing key file", PublishConfig{Host: "h", User: "u", KeyFile: "/nonexistent/key"}, "read key file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Publish(context.Background(), tt.cfg, "r.html", []byte("x"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPublish_CanceledDial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := PublishConfig{Host: "192.0.2.1", User: "u", Password: "p", InsecureIgnoreHostKey: true, Timeout: time.Second}
	_, err := Publish(ctx, cfg, "r.html", []byte("x"))
	require.Error(t, err)
}
