package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/google/uuid"
)

// ErrNoQuestionsAvailable is returned when a skill has no questions to
// serve. Callers skip the skill.
var ErrNoQuestionsAvailable = errors.New("no questions available")

// ErrSessionClosed is returned when answering a session that is not in
// progress.
var ErrSessionClosed = errors.New("quiz session is not in progress")

// State is the lifecycle position of a quiz session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateConverged  State = "converged"
	StateExhausted  State = "exhausted"
)

// Terminal reports whether no further questions will be served.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateExhausted
}

// Result summarizes a session.
type Result struct {
	SessionID     string  `json:"session_id"`
	SkillID       string  `json:"skill_id"`
	State         State   `json:"state"`
	Estimate      float64 `json:"estimate"`
	Confidence    float64 `json:"confidence"`
	LowConfidence bool    `json:"low_confidence"`
	Asked         int     `json:"asked"`
	Correct       int     `json:"correct"`
}

// Feedback describes the outcome of one answer.
type Feedback struct {
	Correct       bool
	GradedBy      string
	Explanation   string
	CorrectAnswer string
	Estimate      float64
	State         State
	Next          *competency.Question
}

// Option configures a Session.
type Option func(*Session)

// WithConfig overrides the staircase tuning.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg.withDefaults() }
}

// WithStartLevel targets the first question at level instead of the
// prior. It does not change the running estimate.
func WithStartLevel(level float64) Option {
	return func(s *Session) {
		l := clamp01(level)
		s.startLevel = &l
	}
}

// WithClock sets the time source for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithSessionID sets the session identifier.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session is one adaptive quiz for one skill. It is not safe for
// concurrent use; callers own it as part of their request context.
type Session struct {
	id      string
	skillID string
	cfg     Config
	now     func() time.Time

	state      State
	bank       []competency.Question
	served     map[string]bool
	lastSeen   map[string]time.Time
	startLevel *float64

	theta      float64
	trace      []float64
	current    *competency.Question
	responses  []profile.QuizResponse
	confidence float64
	lowConf    bool
}

// NewSession creates a NotStarted session for skillID. history is the
// user's prior responses for any skill; it only influences tie-breaking
// between equally suitable questions.
func NewSession(cat *competency.Catalog, skillID string, history []profile.QuizResponse, opts ...Option) (*Session, error) {
	if _, err := cat.Skill(skillID); err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.NewString(),
		skillID:  skillID,
		cfg:      DefaultConfig(),
		now:      func() time.Time { return time.Now().UTC() },
		state:    StateNotStarted,
		bank:     cat.Questions(skillID),
		served:   make(map[string]bool),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, r := range history {
		if r.SkillID != skillID {
			continue
		}
		if r.AnsweredAt.After(s.lastSeen[r.QuestionID]) {
			s.lastSeen[r.QuestionID] = r.AnsweredAt
		}
	}
	s.theta = s.cfg.Prior
	s.trace = []float64{s.theta}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SkillID returns the skill under assessment.
func (s *Session) SkillID() string { return s.skillID }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Estimate returns the running estimate in [0,1].
func (s *Session) Estimate() float64 { return s.theta }

// Responses returns the responses recorded in this session. Once the
// session ended with low confidence, the last response carries the flag.
func (s *Session) Responses() []profile.QuizResponse {
	out := make([]profile.QuizResponse, len(s.responses))
	copy(out, s.responses)
	if n := len(out); n > 0 && s.state.Terminal() && s.lowConf {
		out[n-1].LowConfidence = true
	}
	return out
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (competency.Question, bool) {
	if s.current == nil {
		return competency.Question{}, false
	}
	return *s.current, true
}

// Start serves the first question and moves the session to InProgress.
func (s *Session) Start() (competency.Question, error) {
	if s.state != StateNotStarted {
		if q, ok := s.Current(); ok {
			return q, nil
		}
		return competency.Question{}, ErrSessionClosed
	}
	if len(s.bank) == 0 {
		return competency.Question{}, fmt.Errorf("skill %q: %w", s.skillID, ErrNoQuestionsAvailable)
	}

	target := s.theta
	if s.startLevel != nil {
		target = *s.startLevel
	}
	q := s.selectNext(target)
	s.serve(q)
	s.state = StateInProgress
	return *q, nil
}

// Answer grades answer for the current question and advances the session.
// A grader error falls back to rule-based grading.
func (s *Session) Answer(ctx context.Context, g Grader, answer string) (Feedback, error) {
	if s.state != StateInProgress || s.current == nil {
		return Feedback{}, ErrSessionClosed
	}
	q := *s.current

	grade, err := g.Grade(ctx, q, answer)
	if err != nil {
		grade, _ = RuleGrader{}.Grade(ctx, q, answer)
	}
	return s.Record(answer, grade), nil
}

// Record applies an already graded answer to the current question. It is a
// no-op returning the current state when the session is not in progress.
func (s *Session) Record(answer string, grade Grade) Feedback {
	if s.state != StateInProgress || s.current == nil {
		return Feedback{Estimate: s.theta, State: s.state}
	}
	q := *s.current
	n := len(s.responses)

	s.theta = s.cfg.Update(s.theta, q.Difficulty, grade.Correct, n)
	s.trace = append(s.trace, s.theta)
	s.responses = append(s.responses, profile.QuizResponse{
		SessionID:  s.id,
		QuestionID: q.ID,
		SkillID:    s.skillID,
		Answer:     answer,
		Correct:    grade.Correct,
		Difficulty: q.Difficulty,
		GradedBy:   grade.GradedBy,
		AnsweredAt: s.now(),
	})
	s.current = nil

	s.advance()

	fb := Feedback{
		Correct:       grade.Correct,
		GradedBy:      grade.GradedBy,
		Explanation:   grade.Feedback,
		CorrectAnswer: q.CorrectText(),
		Estimate:      s.theta,
		State:         s.state,
	}
	if s.current != nil {
		next := *s.current
		fb.Next = &next
	}
	return fb
}

// advance applies the stopping rule and serves the next question.
func (s *Session) advance() {
	n := len(s.responses)
	change := s.windowChange()
	s.confidence = s.cfg.Confidence(n, change)

	if n >= s.cfg.Window && change < s.cfg.Epsilon {
		s.state = StateConverged
		return
	}
	if n >= s.cfg.MaxQuestions {
		if s.confidence >= s.cfg.ConfidenceThreshold {
			s.state = StateConverged
		} else {
			s.state = StateExhausted
			s.lowConf = true
		}
		return
	}

	q := s.selectNext(s.theta)
	if q == nil {
		s.state = StateExhausted
		s.lowConf = true
		return
	}
	s.serve(q)
}

// windowChange is the spread of the estimate over the last Window
// responses, or over all responses when fewer were given.
func (s *Session) windowChange() float64 {
	n := len(s.trace) - 1
	from := n - s.cfg.Window
	if from < 0 {
		from = 0
	}
	lo, hi := s.trace[from], s.trace[from]
	for _, v := range s.trace[from+1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}

// Result summarizes the session so far.
func (s *Session) Result() Result {
	correct := 0
	for _, r := range s.responses {
		if r.Correct {
			correct++
		}
	}
	return Result{
		SessionID:     s.id,
		SkillID:       s.skillID,
		State:         s.state,
		Estimate:      s.theta,
		Confidence:    s.confidence,
		LowConfidence: s.lowConf,
		Asked:         len(s.responses),
		Correct:       correct,
	}
}

func (s *Session) serve(q *competency.Question) {
	s.served[q.ID] = true
	s.current = q
}

// selectNext picks the unserved question with difficulty closest to
// target. Ties go to the question seen least recently in earlier sessions
// (never seen first), then to the lower ID. Returns nil when the bank is
// used up.
func (s *Session) selectNext(target float64) *competency.Question {
	var candidates []competency.Question
	for _, q := range s.bank {
		if !s.served[q.ID] {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	const tol = 1e-9
	sort.SliceStable(candidates, func(i, j int) bool {
		di := math.Abs(candidates[i].Difficulty - target)
		dj := math.Abs(candidates[j].Difficulty - target)
		if math.Abs(di-dj) > tol {
			return di < dj
		}
		ti, tj := s.lastSeen[candidates[i].ID], s.lastSeen[candidates[j].ID]
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return candidates[i].ID < candidates[j].ID
	})
	q := candidates[0]
	return &q
}
