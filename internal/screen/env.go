package screen

import (
	"context"
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/store"
)

// Env carries the collaborators and the loaded profile shared by screens.
// Screens mutate Profile only from Update, so no locking is needed.
type Env struct {
	Aggregator     *assessment.Aggregator
	Profiles       profile.Repo
	Events         store.EventRepo
	Advisor        *advisor.Advisor
	Grader         quiz.Grader
	QuizConfig     quiz.Config
	Profile        *profile.Profile
	EnrichLimit    int
	AdvisorTimeout time.Duration
}

// Catalog returns the competency catalog behind the aggregator.
func (e *Env) Catalog() *competency.Catalog {
	return e.Aggregator.Catalog()
}

// Role returns the selected target role, if any.
func (e *Env) Role() (competency.RoleProfile, bool) {
	if e.Profile == nil || e.Profile.SelectedRole == "" {
		return competency.RoleProfile{}, false
	}
	role, err := e.Catalog().GetRole(e.Profile.SelectedRole)
	if err != nil {
		return competency.RoleProfile{}, false
	}
	return role, true
}

// SelectRole sets the target role and saves the profile.
func (e *Env) SelectRole(ctx context.Context, roleID string) error {
	if _, err := e.Catalog().GetRole(roleID); err != nil {
		return err
	}
	e.Profile.SelectedRole = roleID
	return e.Save(ctx)
}

// Save persists the profile.
func (e *Env) Save(ctx context.Context) error {
	if e.Profiles == nil {
		return nil
	}
	return profile.Save(ctx, e.Profiles, e.Profile)
}

// Gaps computes the gap records for the selected role.
func (e *Env) Gaps() ([]gap.Record, error) {
	role, ok := e.Role()
	if !ok {
		return nil, competency.ErrNotFound
	}
	return gap.ComputeGaps(e.Aggregator, e.Profile, role.ID)
}

// Readiness returns the readiness percentage for the selected role.
func (e *Env) Readiness() (float64, bool) {
	records, err := e.Gaps()
	if err != nil {
		return 0, false
	}
	return gap.Readiness(records), true
}

// AdvisorContext bounds one advisor call.
func (e *Env) AdvisorContext() (context.Context, context.CancelFunc) {
	if e.AdvisorTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), e.AdvisorTimeout)
}
