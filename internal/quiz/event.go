package quiz

import (
	"context"
	"time"

	"github.com/abhisek/skillforge/internal/store"
)

// recordTimeout bounds the event write after a quiz finishes.
const recordTimeout = 5 * time.Second

// RecordOutcome appends a finished session to the event log. It runs even
// when ctx is already cancelled, since the responses are saved by then.
func RecordOutcome(ctx context.Context, events store.EventRepo, profileName string, r Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	return events.AppendQuizSession(ctx, store.QuizSessionEventData{
		ProfileName:   profileName,
		SessionID:     r.SessionID,
		SkillID:       r.SkillID,
		State:         string(r.State),
		Estimate:      r.Estimate,
		Confidence:    r.Confidence,
		LowConfidence: r.LowConfidence,
		Asked:         r.Asked,
		Correct:       r.Correct,
	})
}
