package quiz

import (
	qz "github.com/abhisek/skillforge/internal/quiz"
)

// quizInitMsg is sent when the role plan is ready.
type quizInitMsg struct {
	Items           []qz.PlanItem
	RoleName        string
	ReadinessBefore float64
	Err             error
}

// answerGradedMsg carries the grade for a submitted answer.
type answerGradedMsg struct {
	Answer string
	Grade  qz.Grade
}
