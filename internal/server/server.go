// Package server exposes the assessment engine over HTTP. Every request
// carries its profile in a signed bearer token and works on a freshly
// loaded profile, so concurrent sessions for different profiles never
// share state.
package server

import (
	"context"
	"log"
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/auth"
	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/server/middleware"
	"github.com/abhisek/skillforge/internal/server/response"
	"github.com/abhisek/skillforge/internal/store"
	"github.com/gofiber/fiber/v3"
)

// Config holds the HTTP settings.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AdvisorTimeout time.Duration
	EnrichLimit    int
	QuizIdleTTL    time.Duration
}

// Deps are the collaborators the handlers call. Events, Advisor and Grader
// are optional.
type Deps struct {
	Aggregator *assessment.Aggregator
	Profiles   profile.Repo
	Tokens     auth.Service
	Events     store.EventRepo
	Advisor    *advisor.Advisor
	Grader     quiz.Grader
	QuizConfig quiz.Config
	Logger     *log.Logger
}

// Server is the HTTP API.
type Server struct {
	app     *fiber.App
	cfg     Config
	deps    Deps
	catalog *competency.Catalog
	quizzes *quizRegistry
	logger  *log.Logger
}

// New builds the fiber app and registers every route.
func New(deps Deps, cfg Config) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Grader == nil {
		deps.Grader = quiz.RuleGrader{}
	}
	cat := deps.Aggregator.Catalog()
	if deps.Advisor == nil {
		deps.Advisor = advisor.New(cat, nil, advisor.DefaultConfig())
	}

	app := fiber.New(fiber.Config{
		AppName:      "skillforge",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	s := &Server{
		app:     app,
		cfg:     cfg,
		deps:    deps,
		catalog: cat,
		quizzes: newQuizRegistry(cfg.QuizIdleTTL),
		logger:  deps.Logger,
	}

	app.Use(middleware.NewAccessLogMiddleware(deps.Logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(deps.Logger).Middleware())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", func(c fiber.Ctx) error {
		return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"status": "up"})
	})

	v1 := s.app.Group("/v1")
	v1.Post("/sessions", s.createSession)
	v1.Get("/roles", s.listRoles)
	v1.Get("/roles/:id", s.getRole)

	me := v1.Group("/me", middleware.NewAuthMiddleware(s.deps.Tokens).Middleware())
	me.Get("/", s.getMe)
	me.Put("/role", s.putRole)
	me.Put("/ratings/:skill", s.putRating)
	me.Get("/gaps", s.getGaps)
	me.Get("/roadmap", s.getRoadmap)
	me.Get("/report", s.getReport)
	me.Post("/resume", s.postResume)
	me.Post("/quiz/:skill", s.startQuiz)
	me.Post("/quiz/:skill/answers", s.answerQuiz)
	me.Post("/advice", s.postAdvice)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
