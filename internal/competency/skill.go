package competency

// Tier is a coarse question difficulty band.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierExpert       Tier = "expert"
)

// AllTiers returns the tiers from easiest to hardest.
func AllTiers() []Tier {
	return []Tier{TierBeginner, TierIntermediate, TierAdvanced, TierExpert}
}

// Difficulty returns the default difficulty in [0,1] for questions
// declared in this tier without an explicit difficulty.
func (t Tier) Difficulty() float64 {
	switch t {
	case TierBeginner:
		return 0.2
	case TierIntermediate:
		return 0.45
	case TierAdvanced:
		return 0.7
	case TierExpert:
		return 0.9
	default:
		return 0.5
	}
}

// DisplayName returns a human-readable tier label.
func (t Tier) DisplayName() string {
	switch t {
	case TierBeginner:
		return "Beginner"
	case TierIntermediate:
		return "Intermediate"
	case TierAdvanced:
		return "Advanced"
	case TierExpert:
		return "Expert"
	default:
		return string(t)
	}
}

// TierFor maps a proficiency in [0,1] to the tier whose default
// difficulty band contains it.
func TierFor(level float64) Tier {
	switch {
	case level <= 0.3:
		return TierBeginner
	case level <= 0.5:
		return TierIntermediate
	case level <= 0.7:
		return TierAdvanced
	default:
		return TierExpert
	}
}

// Skill is a single competency in the catalog.
type Skill struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Category      string   `yaml:"category" json:"category"`
	Importance    float64  `yaml:"importance" json:"importance"`
	Prerequisites []string `yaml:"prerequisites,omitempty" json:"prerequisites,omitempty"`
	Keywords      []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Requirement is one skill target inside a role.
type Requirement struct {
	SkillID string  `yaml:"skill" json:"skill"`
	Level   float64 `yaml:"level" json:"level"`
}

// RoleProfile is a target role with its ordered skill requirements.
type RoleProfile struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description,omitempty" json:"description,omitempty"`
	Requirements []Requirement `yaml:"requirements" json:"requirements"`
}

// Required returns the target level for skillID and whether the role
// requires it at all.
func (r RoleProfile) Required(skillID string) (float64, bool) {
	for _, req := range r.Requirements {
		if req.SkillID == skillID {
			return req.Level, true
		}
	}
	return 0, false
}

// SkillIDs returns the required skill IDs in declared order.
func (r RoleProfile) SkillIDs() []string {
	ids := make([]string, len(r.Requirements))
	for i, req := range r.Requirements {
		ids[i] = req.SkillID
	}
	return ids
}

// Resource is a curated learning resource for a skill.
type Resource struct {
	Title    string `yaml:"title" json:"title"`
	Kind     string `yaml:"kind" json:"kind"`
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
	Platform string `yaml:"platform,omitempty" json:"platform,omitempty"`
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
}

// QuestionFormat distinguishes how a question is answered.
type QuestionFormat string

const (
	FormatChoice   QuestionFormat = "choice"
	FormatFreeText QuestionFormat = "free_text"
)

// Question is a single quiz item in the bank.
type Question struct {
	ID         string         `yaml:"id" json:"id"`
	SkillID    string         `yaml:"skill" json:"skill"`
	Tier       Tier           `yaml:"tier" json:"tier"`
	Difficulty float64        `yaml:"difficulty,omitempty" json:"difficulty"`
	Format     QuestionFormat `yaml:"format,omitempty" json:"format"`
	Prompt     string         `yaml:"prompt" json:"prompt"`
	Choices    []string       `yaml:"choices,omitempty" json:"choices,omitempty"`
	Answer     int            `yaml:"answer,omitempty" json:"answer"`
	Accepted   []string       `yaml:"accepted,omitempty" json:"accepted,omitempty"`
	Keywords   []string       `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// CorrectText returns the canonical correct answer as text.
func (q Question) CorrectText() string {
	if q.Format == FormatChoice && q.Answer >= 0 && q.Answer < len(q.Choices) {
		return q.Choices[q.Answer]
	}
	if len(q.Accepted) > 0 {
		return q.Accepted[0]
	}
	return ""
}
