package server

import (
	"context"
	"strings"

	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/server/middleware"
	"github.com/abhisek/skillforge/internal/server/response"
	"github.com/gofiber/fiber/v3"
)

// startQuiz begins a fresh adaptive quiz for a skill, replacing any quiz
// in progress for it. The self rating, when present, targets the first
// question.
func (s *Server) startQuiz(c fiber.Ctx) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	skillID := c.Params("skill")
	sk, err := s.catalog.Skill(skillID)
	if err != nil {
		return mapDomainError(err)
	}

	item := quiz.PlanItem{SkillID: sk.ID, SkillName: sk.Name}
	if r, ok := p.Rating(sk.ID); ok {
		level := float64(r.Value) / profile.RatingMax
		item.StartLevel = &level
	}
	sess, err := quiz.NewPlannedSession(s.catalog, item, p, quiz.WithConfig(s.deps.QuizConfig))
	if err != nil {
		return mapDomainError(err)
	}
	q, _ := sess.Current()
	s.quizzes.put(p.Key(), sk.ID, sess)

	return response.Success(c, fiber.StatusCreated, response.MessageCreated, quizStartResponse{
		SessionID: sess.ID(),
		SkillID:   sk.ID,
		State:     sess.State(),
		Question:  newQuestionView(q),
	})
}

// answerQuiz grades the answer to the current question. When the quiz
// reaches a terminal state its responses are appended to the profile and
// the outcome is recorded as an event.
func (s *Server) answerQuiz(c fiber.Ctx) error {
	var req answerRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if strings.TrimSpace(req.Answer) == "" && req.Choice == 0 {
		return badRequest("answer is required", nil)
	}

	key, _ := c.Locals(middleware.CtxProfileKey).(string)
	skillID := c.Params("skill")
	entry, ok := s.quizzes.get(key, skillID)
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "no quiz in progress for "+skillID, nil, nil)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	sess := entry.session
	answer := req.Answer
	if q, ok := sess.Current(); ok && req.Choice != 0 {
		text, ok := quiz.ChoiceText(q, req.Choice)
		if !ok {
			return badRequest("choice out of range", nil)
		}
		answer = text
	}
	fb, err := sess.Answer(c.Context(), s.deps.Grader, answer)
	if err != nil {
		return mapDomainError(err)
	}

	res := answerResponse{
		Correct:       fb.Correct,
		GradedBy:      fb.GradedBy,
		Explanation:   fb.Explanation,
		CorrectAnswer: fb.CorrectAnswer,
		Estimate:      fb.Estimate,
		State:         fb.State,
	}
	if fb.Next != nil {
		res.Next = newQuestionView(*fb.Next)
	}

	if fb.State.Terminal() {
		result := sess.Result()
		res.Result = &result
		if err := s.finishQuiz(c, sess); err != nil {
			return err
		}
		s.quizzes.remove(key, skillID, sess)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (s *Server) finishQuiz(c fiber.Ctx, sess *quiz.Session) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	s.deps.Aggregator.RecordResponses(p, sess.Responses())
	if err := s.saveProfile(c.Context(), p); err != nil {
		return err
	}
	s.recordQuizEvent(c.Context(), p.Name, sess.Result())
	return nil
}

// recordQuizEvent appends the session outcome to the event log. Failures
// are logged and otherwise ignored.
func (s *Server) recordQuizEvent(ctx context.Context, profileName string, r quiz.Result) {
	if s.deps.Events == nil {
		return
	}
	err := quiz.RecordOutcome(ctx, s.deps.Events, profileName, r)
	if err != nil {
		s.logger.Printf("[Quiz] failed to record session %s: %v", r.SessionID, err)
	}
}
