package server

import (
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/quiz"
)

type createSessionRequest struct {
	Profile string `json:"profile"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Profile   string    `json:"profile"`
	ExpiresAt time.Time `json:"expires_at"`
}

type putRoleRequest struct {
	Role         string `json:"role"`
	HoursPerWeek *int   `json:"hours_per_week,omitempty"`
}

type putRatingRequest struct {
	Value int `json:"value"`
}

// answerRequest carries either free answer text or, for choice questions,
// the 1-based choice number.
type answerRequest struct {
	Answer string `json:"answer"`
	Choice int    `json:"choice,omitempty"`
}

type adviceRequest struct {
	Message string `json:"message"`
	Skill   string `json:"skill,omitempty"`
}

type resumeRequest struct {
	Text string `json:"text"`
}

type roleResponse struct {
	competency.RoleProfile
	Skills []competency.Skill `json:"skills"`
}

type meResponse struct {
	Profile      string                     `json:"profile"`
	Key          string                     `json:"key"`
	SelectedRole string                     `json:"selected_role,omitempty"`
	HoursPerWeek int                        `json:"hours_per_week"`
	Ratings      map[string]int             `json:"ratings"`
	Responses    int                        `json:"quiz_responses"`
	Estimates    []assessment.SkillEstimate `json:"estimates"`
	Readiness    *float64                   `json:"readiness,omitempty"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

type gapsResponse struct {
	Role      string       `json:"role"`
	Records   []gap.Record `json:"records"`
	Strengths []gap.Record `json:"strengths"`
	Summary   gap.Summary  `json:"summary"`
}

type roadmapResponse struct {
	Role       string            `json:"role"`
	Items      []gap.RoadmapItem `json:"items"`
	StudyOrder []string          `json:"study_order"`
	Plan       []gap.Week        `json:"plan"`
	Commentary map[string]string `json:"commentary,omitempty"`
}

// questionView is a question without its answer key.
type questionView struct {
	ID         string                    `json:"id"`
	SkillID    string                    `json:"skill"`
	Tier       competency.Tier           `json:"tier"`
	Difficulty float64                   `json:"difficulty"`
	Format     competency.QuestionFormat `json:"format"`
	Prompt     string                    `json:"prompt"`
	Choices    []string                  `json:"choices,omitempty"`
}

func newQuestionView(q competency.Question) *questionView {
	return &questionView{
		ID:         q.ID,
		SkillID:    q.SkillID,
		Tier:       q.Tier,
		Difficulty: q.Difficulty,
		Format:     q.Format,
		Prompt:     q.Prompt,
		Choices:    q.Choices,
	}
}

type quizStartResponse struct {
	SessionID string        `json:"session_id"`
	SkillID   string        `json:"skill_id"`
	State     quiz.State    `json:"state"`
	Question  *questionView `json:"question"`
}

type answerResponse struct {
	Correct       bool          `json:"correct"`
	GradedBy      string        `json:"graded_by"`
	Explanation   string        `json:"explanation,omitempty"`
	CorrectAnswer string        `json:"correct_answer,omitempty"`
	Estimate      float64       `json:"estimate"`
	State         quiz.State    `json:"state"`
	Next          *questionView `json:"next,omitempty"`
	Result        *quiz.Result  `json:"result,omitempty"`
}

type adviceResponse struct {
	Reply  string         `json:"reply"`
	Source advisor.Source `json:"source"`
}

type resumeResponse struct {
	Levels  map[string]int `json:"levels"`
	Source  advisor.Source `json:"source"`
	Updated []string       `json:"updated_ratings"`
}
