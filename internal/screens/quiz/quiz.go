package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillforge/internal/competency"
	qz "github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/router"
	"github.com/abhisek/skillforge/internal/screen"
	"github.com/abhisek/skillforge/internal/screens/summary"
	"github.com/abhisek/skillforge/internal/ui/components"
	"github.com/abhisek/skillforge/internal/ui/layout"
)

// gradeTimeout bounds one grading call.
const gradeTimeout = 30 * time.Second

type phase int

const (
	phaseLoading phase = iota
	phaseQuestion
	phaseGrading
	phaseFeedback
	phaseDone
)

// QuizScreen runs an adaptive quiz over every skill of the target role.
type QuizScreen struct {
	env         *screen.Env
	items       []qz.PlanItem
	index       int
	session     *qz.Session
	question    competency.Question
	number      int
	phase       phase
	input       components.TextInput
	choices     components.MultiChoice
	spinner     spinner.Model
	feedback    qz.Feedback
	quitConfirm bool
	summary     summary.Summary
	errMsg      string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.BackInterceptor = (*QuizScreen)(nil)

// New creates a new QuizScreen for the selected role.
func New(env *screen.Env) *QuizScreen {
	return &QuizScreen{
		env:     env,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.initQuiz(), s.spinner.Tick)
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

// InterceptsBack keeps Esc for the quit dialog while a quiz is running.
func (s *QuizScreen) InterceptsBack() bool {
	return s.errMsg == "" && s.phase != phaseDone && s.phase != phaseLoading
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.quitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	case s.phase == phaseQuestion && s.question.Format == competency.FormatChoice:
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "Esc", Description: "Quit"},
		}
	case s.phase == phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizInitMsg:
		return s.handleInit(msg)

	case answerGradedMsg:
		return s.handleGraded(msg)

	case spinner.TickMsg:
		if s.phase != phaseLoading && s.phase != phaseGrading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseQuestion && s.question.Format != competency.FormatChoice {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// initQuiz plans the role quiz.
func (s *QuizScreen) initQuiz() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		role, ok := env.Role()
		if !ok {
			return quizInitMsg{Err: errors.New("pick a target role first")}
		}
		items := qz.Plan(env.Catalog(), role, env.Profile)
		available := 0
		for _, it := range items {
			if !it.Skipped {
				available++
			}
		}
		if available == 0 {
			return quizInitMsg{Err: fmt.Errorf("%s: %w", role.Name, qz.ErrNoQuestionsAvailable)}
		}
		before, _ := env.Readiness()
		return quizInitMsg{Items: items, RoleName: role.Name, ReadinessBefore: before}
	}
}

func (s *QuizScreen) handleInit(msg quizInitMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.items = msg.Items
	s.summary = summary.Summary{
		RoleName:        msg.RoleName,
		ReadinessBefore: msg.ReadinessBefore,
	}
	return s, s.startNext()
}

// startNext opens a session for the next plan item with questions, or ends
// the quiz when none is left.
func (s *QuizScreen) startNext() tea.Cmd {
	for ; s.index < len(s.items); s.index++ {
		item := s.items[s.index]
		if item.Skipped {
			s.summary.Skills = append(s.summary.Skills, summary.SkillResult{SkillName: item.SkillName, Skipped: true})
			continue
		}
		sess, err := qz.NewPlannedSession(s.env.Catalog(), item, s.env.Profile, qz.WithConfig(s.env.QuizConfig))
		if errors.Is(err, qz.ErrNoQuestionsAvailable) {
			s.summary.Skills = append(s.summary.Skills, summary.SkillResult{SkillName: item.SkillName, Skipped: true})
			continue
		}
		if err != nil {
			s.errMsg = err.Error()
			return nil
		}
		s.session = sess
		s.number = 0
		q, _ := sess.Current()
		return s.showQuestion(q)
	}
	return s.finish(false)
}

// showQuestion prepares the input for q.
func (s *QuizScreen) showQuestion(q competency.Question) tea.Cmd {
	s.question = q
	s.number++
	s.phase = phaseQuestion
	if q.Format == competency.FormatChoice {
		s.choices = components.NewMultiChoice(q.Choices)
		return nil
	}
	s.input = components.NewTextInput("Type your answer...", 500, 60)
	return s.input.Init()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.quitConfirm {
		switch key {
		case "y", "Y":
			s.quitConfirm = false
			return s, s.finish(true)
		case "n", "N", "esc":
			s.quitConfirm = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseFeedback:
		return s, s.advance()

	case phaseQuestion:
		if key == "esc" {
			s.quitConfirm = true
			return s, nil
		}
		if s.question.Format == competency.FormatChoice {
			var cmd tea.Cmd
			s.choices, cmd = s.choices.Update(msg)
			if answer, ok := s.choices.Chosen(); ok {
				return s, s.submit(answer)
			}
			return s, cmd
		}
		if key == "enter" {
			answer := s.input.Value()
			if answer == "" {
				return s, nil
			}
			return s, s.submit(answer)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case phaseGrading:
		if key == "esc" {
			s.quitConfirm = true
		}
	}
	return s, nil
}

// submit grades answer off the update loop. A grader error falls back to
// rule-based grading.
func (s *QuizScreen) submit(answer string) tea.Cmd {
	s.phase = phaseGrading
	grader := s.env.Grader
	if grader == nil {
		grader = qz.RuleGrader{}
	}
	q := s.question
	grade := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), gradeTimeout)
		defer cancel()
		g, err := grader.Grade(ctx, q, answer)
		if err != nil {
			g, _ = qz.RuleGrader{}.Grade(ctx, q, answer)
		}
		return answerGradedMsg{Answer: answer, Grade: g}
	}
	return tea.Batch(grade, s.spinner.Tick)
}

func (s *QuizScreen) handleGraded(msg answerGradedMsg) (screen.Screen, tea.Cmd) {
	if s.session == nil || s.phase != phaseGrading {
		return s, nil
	}
	s.feedback = s.session.Record(msg.Answer, msg.Grade)
	s.input.Submit(s.feedback.Correct)
	s.choices.Reveal(s.feedback.CorrectAnswer)
	s.phase = phaseFeedback
	return s, nil
}

// advance moves past feedback to the next question or skill.
func (s *QuizScreen) advance() tea.Cmd {
	if !s.session.State().Terminal() {
		if q, ok := s.session.Current(); ok {
			return s.showQuestion(q)
		}
	}
	s.completeSkill()
	s.index++
	return s.startNext()
}

// completeSkill saves a finished skill's responses and records the outcome.
func (s *QuizScreen) completeSkill() {
	item := s.items[s.index]
	ctx := context.Background()

	sr := summary.SkillResult{SkillName: item.SkillName, Result: s.session.Result()}
	if est, err := s.env.Aggregator.Estimate(s.env.Profile, item.SkillID); err == nil {
		sr.Before = est.Value
	}

	s.env.Aggregator.RecordResponses(s.env.Profile, s.session.Responses())
	if err := s.env.Save(ctx); err != nil {
		s.summary.SaveErr = err.Error()
	}
	if s.env.Events != nil {
		_ = qz.RecordOutcome(ctx, s.env.Events, s.env.Profile.Name, sr.Result)
	}

	if est, err := s.env.Aggregator.Estimate(s.env.Profile, item.SkillID); err == nil {
		sr.After = est.Value
	}
	s.summary.Skills = append(s.summary.Skills, sr)
	s.session = nil
}

// finish replaces the quiz with its summary. An abandoned quiz with no
// finished skill just closes.
func (s *QuizScreen) finish(abandoned bool) tea.Cmd {
	s.phase = phaseDone
	s.session = nil
	s.summary.Abandoned = abandoned

	finished := 0
	for _, sr := range s.summary.Skills {
		if !sr.Skipped {
			finished++
		}
	}
	if abandoned && finished == 0 {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	s.summary.ReadinessAfter, _ = s.env.Readiness()
	sum := s.summary
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(&sum)}
	}
}
