package quiz

import (
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
)

// PlanItem is one skill in a role quiz.
type PlanItem struct {
	SkillID    string
	SkillName  string
	StartLevel *float64
	Skipped    bool
}

// Plan lists the skills of a role in requirement order for a quiz run.
// Skills without questions are marked Skipped. A self rating, when present,
// becomes the start level for that skill's first question.
func Plan(cat *competency.Catalog, role competency.RoleProfile, p *profile.Profile) []PlanItem {
	items := make([]PlanItem, 0, len(role.Requirements))
	for _, req := range role.Requirements {
		item := PlanItem{SkillID: req.SkillID, SkillName: req.SkillID}
		if s, err := cat.Skill(req.SkillID); err == nil {
			item.SkillName = s.Name
		}
		if p != nil {
			if r, ok := p.Rating(req.SkillID); ok {
				level := float64(r.Value) / profile.RatingMax
				item.StartLevel = &level
			}
		}
		item.Skipped = len(cat.Questions(req.SkillID)) == 0
		items = append(items, item)
	}
	return items
}

// NewPlannedSession starts a session for a plan item, applying its start
// level. It returns ErrNoQuestionsAvailable for skipped items.
func NewPlannedSession(cat *competency.Catalog, item PlanItem, p *profile.Profile, opts ...Option) (*Session, error) {
	var history []profile.QuizResponse
	if p != nil {
		history = p.QuizHistory
	}
	if item.StartLevel != nil {
		opts = append(opts, WithStartLevel(*item.StartLevel))
	}
	s, err := NewSession(cat, item.SkillID, history, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}
