package llm

import "context"

// Purpose names why a request was made. It is stored with every logged
// request so usage can be broken down per feature.
type Purpose string

const (
	PurposeGrade     Purpose = "grade-answer"
	PurposeChat      Purpose = "advisor-chat"
	PurposeAdvice    Purpose = "learning-advice"
	PurposeEnrich    Purpose = "roadmap-enrich"
	PurposeResume    Purpose = "resume-extract"
	PurposeInterview Purpose = "interview-feedback"
	PurposeUnknown   Purpose = "unknown"
)

var purposeLabels = map[Purpose]string{
	PurposeGrade:     "Free-text grading",
	PurposeChat:      "Advisor chat",
	PurposeAdvice:    "Learning advice",
	PurposeEnrich:    "Roadmap commentary",
	PurposeResume:    "Resume extraction",
	PurposeInterview: "Interview feedback",
}

// Purposes lists the known purposes.
func Purposes() []Purpose {
	return []Purpose{PurposeGrade, PurposeChat, PurposeAdvice, PurposeEnrich, PurposeResume, PurposeInterview}
}

// Known reports whether p is one of Purposes.
func (p Purpose) Known() bool {
	_, ok := purposeLabels[p]
	return ok
}

// Label returns a display name, or the raw value for unknown purposes.
func (p Purpose) Label() string {
	if l, ok := purposeLabels[p]; ok {
		return l
	}
	return string(p)
}

type purposeKey struct{}

// WithPurpose tags ctx with p, replacing any earlier tag.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// EnsurePurpose tags ctx with p unless a caller already tagged it. Shared
// helpers use it so that the outermost feature is the one recorded.
func EnsurePurpose(ctx context.Context, p Purpose) context.Context {
	if _, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return ctx
	}
	return WithPurpose(ctx, p)
}

// PurposeFrom returns the purpose tag of ctx, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
