// Package assessment merges self-reported ratings with quiz evidence into a
// per-skill proficiency estimate.
package assessment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
)

// Ordinal self-rating scale.
const (
	ScaleMin = profile.RatingMin
	ScaleMax = profile.RatingMax
)

// Quiz weighting policy. Each quiz response adds QuizWeightStep of trust in
// the quiz score, up to QuizWeightCap.
const (
	QuizWeightStep = 0.2
	QuizWeightCap  = 0.8
)

// ErrInvalidRating is returned for ratings outside [ScaleMin, ScaleMax].
var ErrInvalidRating = profile.ErrInvalidRating

// SkillEstimate is the derived proficiency for one skill. It is never
// stored.
type SkillEstimate struct {
	SkillID    string   `json:"skill_id"`
	SelfRating *float64 `json:"self_rating,omitempty"`
	QuizScore  *float64 `json:"quiz_score,omitempty"`
	QuizCount  int      `json:"quiz_count"`
	QuizWeight float64  `json:"quiz_weight"`
	Value      float64  `json:"value"`

	// LowConfidence is set while quiz evidence is shorter than the
	// staircase window.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// Normalize maps an ordinal rating onto [0,1].
func Normalize(value int) float64 {
	return float64(value) / ScaleMax
}

// QuizWeight returns the weight given to the quiz score after n responses.
// It is non-decreasing in n and never exceeds QuizWeightCap.
func QuizWeight(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(QuizWeightCap, float64(n)*QuizWeightStep)
}

// Combine blends a normalized self rating with a quiz score.
func Combine(selfNorm, quizScore float64, n int) float64 {
	w := QuizWeight(n)
	return w*quizScore + (1-w)*selfNorm
}

// ValidRating reports whether value is on the ordinal scale.
func ValidRating(value int) bool {
	return value >= ScaleMin && value <= ScaleMax
}

// Aggregator computes estimates from a profile.
type Aggregator struct {
	catalog *competency.Catalog
	quiz    quiz.Config
	now     func() time.Time
}

// NewAggregator creates an aggregator. Quiz history is replayed with cfg.
func NewAggregator(cat *competency.Catalog, cfg quiz.Config) *Aggregator {
	return &Aggregator{
		catalog: cat,
		quiz:    cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the competency model the aggregator validates against.
func (a *Aggregator) Catalog() *competency.Catalog { return a.catalog }

// RecordSelfRating stores a self rating on p. Nothing is written when the
// rating is out of scale or the skill is unknown.
func (a *Aggregator) RecordSelfRating(p *profile.Profile, skillID string, value int) error {
	if !ValidRating(value) {
		return fmt.Errorf("rating %d for %q outside %d-%d: %w", value, skillID, ScaleMin, ScaleMax, ErrInvalidRating)
	}
	if !a.catalog.HasSkill(skillID) {
		return fmt.Errorf("skill %q: %w", skillID, competency.ErrNotFound)
	}
	now := a.now()
	if p.SelfRatings == nil {
		p.SelfRatings = make(map[string]profile.SelfRating)
	}
	p.SelfRatings[skillID] = profile.SelfRating{Value: value, UpdatedAt: now}
	p.Touch(now)
	return nil
}

// RecordResponses appends finished quiz responses to p.
func (a *Aggregator) RecordResponses(p *profile.Profile, rs []profile.QuizResponse) {
	if len(rs) == 0 {
		return
	}
	p.AppendResponses(rs...)
	p.Touch(a.now())
}

// Estimate derives the proficiency for skillID. Missing inputs contribute
// zero, so a skill with no evidence at all estimates to 0.
func (a *Aggregator) Estimate(p *profile.Profile, skillID string) (SkillEstimate, error) {
	if !a.catalog.HasSkill(skillID) {
		return SkillEstimate{}, fmt.Errorf("skill %q: %w", skillID, competency.ErrNotFound)
	}
	est := SkillEstimate{SkillID: skillID}
	if p == nil {
		return est, nil
	}

	selfNorm := 0.0
	if r, ok := p.Rating(skillID); ok {
		selfNorm = Normalize(r.Value)
		est.SelfRating = &selfNorm
	}

	responses := p.Responses(skillID)
	est.QuizCount = len(responses)
	est.QuizWeight = QuizWeight(est.QuizCount)
	quizScore := 0.0
	if est.QuizCount > 0 {
		quizScore = quiz.Replay(responses, a.quiz)
		est.QuizScore = &quizScore
		window := a.quiz.Window
		if window <= 0 {
			window = quiz.DefaultWindow
		}
		est.LowConfidence = est.QuizCount < window || responses[len(responses)-1].LowConfidence
	}

	est.Value = Combine(selfNorm, quizScore, est.QuizCount)
	return est, nil
}

// Estimates returns the estimate values for skillIDs, keyed by skill.
func (a *Aggregator) Estimates(p *profile.Profile, skillIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(skillIDs))
	for _, id := range skillIDs {
		est, err := a.Estimate(p, id)
		if err != nil {
			return nil, err
		}
		out[id] = est.Value
	}
	return out, nil
}

// ApplyResumeLevels raises self ratings from resume levels on a 0-10 scale.
// Existing ratings are never lowered and unknown skills are ignored. It
// returns the skills whose rating changed, sorted.
func (a *Aggregator) ApplyResumeLevels(p *profile.Profile, levels map[string]int) []string {
	var changed []string
	now := a.now()
	for id, lvl := range levels {
		if !a.catalog.HasSkill(id) || lvl <= 0 {
			continue
		}
		value := int(math.Ceil(float64(lvl) / 2))
		value = min(max(value, ScaleMin), ScaleMax)
		if cur, ok := p.Rating(id); ok && cur.Value >= value {
			continue
		}
		if p.SelfRatings == nil {
			p.SelfRatings = make(map[string]profile.SelfRating)
		}
		p.SelfRatings[id] = profile.SelfRating{Value: value, UpdatedAt: now}
		changed = append(changed, id)
	}
	if len(changed) > 0 {
		sort.Strings(changed)
		p.Touch(now)
	}
	return changed
}

// RecordResume stores the analysed resume on p and raises self ratings from
// its levels. It returns the skills whose rating changed.
func (a *Aggregator) RecordResume(p *profile.Profile, text string, levels map[string]int, source string) []string {
	known := make(map[string]int, len(levels))
	for id, lvl := range levels {
		if a.catalog.HasSkill(id) {
			known[id] = lvl
		}
	}
	p.Resume = &profile.ResumeInfo{
		Text:      text,
		Skills:    known,
		Source:    source,
		UpdatedAt: a.now(),
	}
	changed := a.ApplyResumeLevels(p, known)
	p.Touch(a.now())
	return changed
}
