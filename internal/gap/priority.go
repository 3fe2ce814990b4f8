package gap

// Priority is a coarse urgency band for a gap.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priority band thresholds on the PriorityScore scale.
const (
	HighPriorityAbove   = 3.0
	MediumPriorityAbove = 1.0
)

// PriorityScore weighs a gap by how much the role asks for. Both inputs are
// in [0,1]; the score is in [0,10].
func PriorityScore(gap, target float64) float64 {
	return round(gap*target*10, 2)
}

// PriorityFor maps a priority score onto a band.
func PriorityFor(score float64) Priority {
	switch {
	case score > HighPriorityAbove:
		return PriorityHigh
	case score > MediumPriorityAbove:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// DisplayName returns a human-readable band name.
func (p Priority) DisplayName() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return string(p)
	}
}

// Stage is the learning stage a learner is in for a skill.
type Stage string

const (
	StageBeginner     Stage = "beginner"
	StageIntermediate Stage = "intermediate"
	StageAdvanced     Stage = "advanced"
)

// StageFor returns the learning stage for an estimate in [0,1].
func StageFor(estimate float64) Stage {
	switch {
	case estimate <= 0.3:
		return StageBeginner
	case estimate <= 0.6:
		return StageIntermediate
	default:
		return StageAdvanced
	}
}

// DisplayName returns a human-readable stage name.
func (s Stage) DisplayName() string {
	switch s {
	case StageBeginner:
		return "Beginner"
	case StageIntermediate:
		return "Intermediate"
	case StageAdvanced:
		return "Advanced"
	default:
		return string(s)
	}
}

// Milestones lists what a learner works on in this stage.
func (s Stage) Milestones() []string {
	switch s {
	case StageBeginner:
		return []string{"Master fundamentals", "Understand core concepts", "Complete beginner tutorials"}
	case StageIntermediate:
		return []string{"Build projects", "Practice problem-solving", "Study advanced concepts"}
	default:
		return []string{"Contribute to open source", "Design complex systems", "Mentor others"}
	}
}
