// Package profile defines the persisted per-user state blob and the
// key-value repository contract it is stored through.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"
)

// SchemaVersion is the current blob layout version.
const SchemaVersion = 1

// Rating scale bounds for self-assessment.
const (
	RatingMin = 1
	RatingMax = 5
)

// GuestName is used when no profile name is given.
const GuestName = "Guest"

// ErrInvalidRating is returned when a rating is outside the declared scale,
// whether it comes from user input or from a stored blob.
var ErrInvalidRating = errors.New("invalid rating")

// ErrMalformed is returned when a stored blob cannot be decoded at all.
var ErrMalformed = errors.New("malformed profile")

// SelfRating is a user-reported proficiency on the ordinal scale.
type SelfRating struct {
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuizResponse is one answered quiz question. Responses are append-only.
type QuizResponse struct {
	SessionID     string    `json:"session_id"`
	QuestionID    string    `json:"question_id"`
	SkillID       string    `json:"skill_id"`
	Answer        string    `json:"answer"`
	Correct       bool      `json:"correct"`
	Difficulty    float64   `json:"difficulty"`
	GradedBy      string    `json:"graded_by,omitempty"`
	AnsweredAt    time.Time `json:"answered_at"`
	LowConfidence bool      `json:"low_confidence,omitempty"` // set on the last response of an unconfident session
}

// ResumeInfo holds the last analysed resume and the levels it implied.
type ResumeInfo struct {
	Text      string         `json:"text,omitempty"`
	Skills    map[string]int `json:"skills,omitempty"`
	Source    string         `json:"source,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Cache holds values computed from the profile for quick display. It is
// advisory and recomputed whenever inputs change.
type Cache struct {
	RoleID     string    `json:"role_id,omitempty"`
	Readiness  float64   `json:"readiness,omitempty"`
	ComputedAt time.Time `json:"computed_at,omitempty"`
}

// Profile is the persisted blob for one user.
type Profile struct {
	Version      int                   `json:"version"`
	Name         string                `json:"profile_name"`
	SelectedRole string                `json:"selected_role,omitempty"`
	HoursPerWeek int                   `json:"hours_per_week,omitempty"`
	SelfRatings  map[string]SelfRating `json:"self_ratings"`
	QuizHistory  []QuizResponse        `json:"quiz_history"`
	Resume       *ResumeInfo           `json:"resume,omitempty"`
	Cache        Cache                 `json:"cache"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// New returns an empty profile for name.
func New(name string) *Profile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = GuestName
	}
	return &Profile{
		Version:     SchemaVersion,
		Name:        name,
		SelfRatings: make(map[string]SelfRating),
	}
}

// Key normalizes a profile name into its storage key.
func Key(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))
	if k == "" {
		return strings.ToLower(GuestName)
	}
	return k
}

// Key returns the storage key for this profile.
func (p *Profile) Key() string {
	return Key(p.Name)
}

// Rating returns the self rating for a skill, if any.
func (p *Profile) Rating(skillID string) (SelfRating, bool) {
	r, ok := p.SelfRatings[skillID]
	return r, ok
}

// Responses returns the quiz history for a skill in chronological order.
func (p *Profile) Responses(skillID string) []QuizResponse {
	var out []QuizResponse
	for _, r := range p.QuizHistory {
		if r.SkillID == skillID {
			out = append(out, r)
		}
	}
	return out
}

// AppendResponses adds responses to the history.
func (p *Profile) AppendResponses(rs ...QuizResponse) {
	p.QuizHistory = append(p.QuizHistory, rs...)
}

// Touch marks the profile as modified and drops cached values.
func (p *Profile) Touch(now time.Time) {
	p.UpdatedAt = now
	p.Cache = Cache{}
}

// Repo is the key-value persistence contract for profiles.
type Repo interface {
	// Get returns the profile stored under key, or nil when none exists.
	Get(ctx context.Context, key string) (*Profile, error)

	// Put stores the profile under key, replacing any previous value.
	Put(ctx context.Context, key string, p *Profile) error

	// Delete removes the profile stored under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
}

// LoadOrNew returns the stored profile for name, or a fresh one when the
// repository has none.
func LoadOrNew(ctx context.Context, repo Repo, name string) (*Profile, error) {
	p, err := repo.Get(ctx, Key(name))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return New(name), nil
	}
	return p, nil
}

// Save stamps the profile and writes it under its own key.
func Save(ctx context.Context, repo Repo, p *Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	return repo.Put(ctx, p.Key(), p)
}
