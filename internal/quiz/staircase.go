package quiz

import (
	"math"

	"github.com/abhisek/skillforge/internal/profile"
)

// Default tuning for the adaptive staircase.
const (
	DefaultPrior               = 0.5
	DefaultSlope               = 6.0
	DefaultStep0               = 0.35
	DefaultDecay               = 0.35
	DefaultMinStep             = 0.04
	DefaultWindow              = 3
	DefaultEpsilon             = 0.05
	DefaultMaxQuestions        = 10
	DefaultConfidenceThreshold = 0.6
)

// Config tunes the running estimate and the stopping rule.
//
// After the n-th response (0-based) on a question of difficulty d, the
// estimate moves by Step(n) * (outcome - Expected(theta, d)), where outcome
// is 1 for a correct answer and 0 otherwise.
type Config struct {
	Prior   float64 `mapstructure:"prior"`
	Slope   float64 `mapstructure:"slope"`
	Step0   float64 `mapstructure:"step0"`
	Decay   float64 `mapstructure:"decay"`
	MinStep float64 `mapstructure:"min_step"`

	// Window and Epsilon: converged once the estimate's spread over the
	// last Window responses is below Epsilon.
	Window  int     `mapstructure:"window"`
	Epsilon float64 `mapstructure:"epsilon"`

	// MaxQuestions caps a session. At the cap the session converges only if
	// Confidence reaches ConfidenceThreshold.
	MaxQuestions        int     `mapstructure:"max_questions"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
}

// DefaultConfig returns the default staircase tuning.
func DefaultConfig() Config {
	return Config{
		Prior:               DefaultPrior,
		Slope:               DefaultSlope,
		Step0:               DefaultStep0,
		Decay:               DefaultDecay,
		MinStep:             DefaultMinStep,
		Window:              DefaultWindow,
		Epsilon:             DefaultEpsilon,
		MaxQuestions:        DefaultMaxQuestions,
		ConfidenceThreshold: DefaultConfidenceThreshold,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Prior == 0 {
		c.Prior = d.Prior
	}
	if c.Slope == 0 {
		c.Slope = d.Slope
	}
	if c.Step0 == 0 {
		c.Step0 = d.Step0
	}
	if c.Decay == 0 {
		c.Decay = d.Decay
	}
	if c.MinStep == 0 {
		c.MinStep = d.MinStep
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.Epsilon == 0 {
		c.Epsilon = d.Epsilon
	}
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = d.MaxQuestions
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = d.ConfidenceThreshold
	}
	return c
}

// Step returns the step size applied to the n-th response (0-based). It
// shrinks with n and never drops below MinStep.
func (c Config) Step(n int) float64 {
	s := c.Step0 / (1 + c.Decay*float64(n))
	return math.Max(c.MinStep, s)
}

// Expected returns the probability that a user at estimate theta answers a
// question of difficulty d correctly.
func (c Config) Expected(theta, d float64) float64 {
	return 1 / (1 + math.Exp(c.Slope*(d-theta)))
}

// Update applies one response to the estimate.
func (c Config) Update(theta, d float64, correct bool, n int) float64 {
	outcome := 0.0
	if correct {
		outcome = 1
	}
	next := theta + c.Step(n)*(outcome-c.Expected(theta, d))
	return clamp01(next)
}

// Confidence scores how settled an estimate is after n responses given the
// estimate's movement over the last window.
func (c Config) Confidence(n int, windowChange float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) / float64(n+2) * (1 - math.Min(math.Abs(windowChange), 1))
}

// Replay recomputes the running estimate from a chronological response
// history, starting from the prior.
func Replay(responses []profile.QuizResponse, cfg Config) float64 {
	cfg = cfg.withDefaults()
	theta := cfg.Prior
	for i, r := range responses {
		theta = cfg.Update(theta, r.Difficulty, r.Correct, i)
	}
	return theta
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
