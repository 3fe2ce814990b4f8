package server

import (
	"context"
	"strings"
	"time"

	"github.com/abhisek/skillforge/internal/assessment"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/server/middleware"
	"github.com/abhisek/skillforge/internal/server/response"
	"github.com/gofiber/fiber/v3"
)

func (s *Server) createSession(c fiber.Ctx) error {
	var req createSessionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	token, exp, err := s.deps.Tokens.Issue(req.Profile)
	if err != nil {
		return mapDomainError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, sessionResponse{
		Token:     token,
		Profile:   profile.New(req.Profile).Name,
		ExpiresAt: exp,
	})
}

func (s *Server) listRoles(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, s.catalog.ListRoles())
}

func (s *Server) getRole(c fiber.Ctx) error {
	role, err := s.catalog.GetRole(c.Params("id"))
	if err != nil {
		return mapDomainError(err)
	}
	res := roleResponse{RoleProfile: role}
	for _, id := range role.SkillIDs() {
		if sk, err := s.catalog.Skill(id); err == nil {
			res.Skills = append(res.Skills, sk)
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

// loadProfile reads the caller's profile, or a new one for first-time
// callers.
func (s *Server) loadProfile(c fiber.Ctx) (*profile.Profile, error) {
	name, _ := c.Locals(middleware.CtxProfileName).(string)
	if _, ok := c.Locals(middleware.CtxProfileKey).(string); !ok {
		return nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	p, err := profile.LoadOrNew(c.Context(), s.deps.Profiles, name)
	if err != nil {
		return nil, mapDomainError(err)
	}
	return p, nil
}

func (s *Server) saveProfile(ctx context.Context, p *profile.Profile) error {
	if err := profile.Save(ctx, s.deps.Profiles, p); err != nil {
		return mapDomainError(err)
	}
	return nil
}

// roleFor picks the role from the query string, falling back to the
// profile's selected role.
func roleFor(c fiber.Ctx, p *profile.Profile) (string, error) {
	role := strings.TrimSpace(c.Query("role"))
	if role == "" {
		role = p.SelectedRole
	}
	if role == "" {
		return "", badRequest("role is required", nil)
	}
	return role, nil
}

func (s *Server) getMe(c fiber.Ctx) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}

	res := meResponse{
		Profile:      p.Name,
		Key:          p.Key(),
		SelectedRole: p.SelectedRole,
		HoursPerWeek: p.HoursPerWeek,
		Ratings:      make(map[string]int, len(p.SelfRatings)),
		Responses:    len(p.QuizHistory),
		Estimates:    []assessment.SkillEstimate{},
		UpdatedAt:    p.UpdatedAt,
	}
	for id, r := range p.SelfRatings {
		res.Ratings[id] = r.Value
	}

	if p.SelectedRole != "" {
		role, err := s.catalog.GetRole(p.SelectedRole)
		if err == nil {
			for _, id := range role.SkillIDs() {
				est, err := s.deps.Aggregator.Estimate(p, id)
				if err != nil {
					return mapDomainError(err)
				}
				res.Estimates = append(res.Estimates, est)
			}
			records, err := gap.ComputeGaps(s.deps.Aggregator, p, role.ID)
			if err != nil {
				return mapDomainError(err)
			}
			readiness := gap.Readiness(records)
			res.Readiness = &readiness
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (s *Server) putRole(c fiber.Ctx) error {
	var req putRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	role, err := s.catalog.GetRole(req.Role)
	if err != nil {
		return mapDomainError(err)
	}
	if req.HoursPerWeek != nil && *req.HoursPerWeek < 0 {
		return badRequest("hours_per_week must not be negative", nil)
	}

	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	p.SelectedRole = role.ID
	if req.HoursPerWeek != nil {
		p.HoursPerWeek = *req.HoursPerWeek
	}
	p.Touch(time.Now().UTC())
	if err := s.saveProfile(c.Context(), p); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{
		"selected_role":  p.SelectedRole,
		"hours_per_week": p.HoursPerWeek,
	})
}

func (s *Server) putRating(c fiber.Ctx) error {
	var req putRatingRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	skillID := c.Params("skill")
	if err := s.deps.Aggregator.RecordSelfRating(p, skillID, req.Value); err != nil {
		return mapDomainError(err)
	}
	if err := s.saveProfile(c.Context(), p); err != nil {
		return err
	}

	est, err := s.deps.Aggregator.Estimate(p, skillID)
	if err != nil {
		return mapDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, est)
}

func (s *Server) getGaps(c fiber.Ctx) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	roleID, err := roleFor(c, p)
	if err != nil {
		return err
	}

	records, err := gap.ComputeGaps(s.deps.Aggregator, p, roleID)
	if err != nil {
		return mapDomainError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, gapsResponse{
		Role:      roleID,
		Records:   records,
		Strengths: nonNil(gap.Strengths(records)),
		Summary:   gap.Summarize(records),
	})
}

func (s *Server) getRoadmap(c fiber.Ctx) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	roleID, err := roleFor(c, p)
	if err != nil {
		return err
	}

	records, err := gap.ComputeGaps(s.deps.Aggregator, p, roleID)
	if err != nil {
		return mapDomainError(err)
	}
	items := gap.BuildRoadmap(s.catalog, records, p.HoursPerWeek)
	res := roadmapResponse{
		Role:       roleID,
		Items:      nonNil(items),
		StudyOrder: nonNil(gap.StudyOrder(s.catalog, items)),
		Plan:       nonNil(gap.WeeklyPlan(items, gap.DefaultPlanWeeks)),
	}

	if fiber.Query[bool](c, "advice") && s.deps.Advisor.Available() {
		ctx, cancel := s.advisorContext(c.Context())
		defer cancel()
		res.Commentary = s.deps.Advisor.Enrich(ctx, items, s.cfg.EnrichLimit)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (s *Server) advisorContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.AdvisorTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.AdvisorTimeout)
	}
	return context.WithCancel(ctx)
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
