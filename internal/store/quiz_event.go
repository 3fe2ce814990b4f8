package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendQuizSession(ctx context.Context, data QuizSessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().Insert(quizSessionTable).
		Columns(colSequence, colTimestamp, colProfileName, colSessionID, colSkillID,
			colState, colEstimate, colConfidence, colLowConfidence,
			colQuestionsAsked, colQuestionsCorrect).
		Values(seqNum, time.Now().UTC(), data.ProfileName, data.SessionID, data.SkillID,
			data.State, data.Estimate, data.Confidence, data.LowConfidence,
			data.Asked, data.Correct).
		Query()
	if _, err := exec(ctx, r.drv, query, args); err != nil {
		return fmt.Errorf("save quiz session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuizSessions(ctx context.Context, profileName, skillID string, opts QueryOpts) ([]QuizSessionEvent, error) {
	sel := builder().Select(
		colID, colSequence, colTimestamp, colProfileName, colSessionID, colSkillID,
		colState, colEstimate, colConfidence, colLowConfidence,
		colQuestionsAsked, colQuestionsCorrect,
	).
		From(entsql.Table(quizSessionTable)).
		Where(entsql.EQ(colProfileName, profileName))
	if skillID != "" {
		sel.Where(entsql.EQ(colSkillID, skillID))
	}
	query, args := applyQueryOpts(sel, opts).Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query quiz sessions: %w", err)
	}
	defer rows.Close()

	var out []QuizSessionEvent
	for rows.Next() {
		var e QuizSessionEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.ProfileName, &e.SessionID,
			&e.SkillID, &e.State, &e.Estimate, &e.Confidence, &e.LowConfidence,
			&e.Asked, &e.Correct); err != nil {
			return nil, fmt.Errorf("scan quiz session: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
