package server

import (
	"strings"
	"time"

	"github.com/abhisek/skillforge/internal/advisor"
	"github.com/abhisek/skillforge/internal/gap"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/report"
	"github.com/abhisek/skillforge/internal/resume"
	"github.com/abhisek/skillforge/internal/server/response"
	"github.com/gofiber/fiber/v3"
)

// postAdvice answers a chat message, or gives learning advice for one
// skill of the selected role when skill is set. Provider failures fall
// back to rule-based replies.
func (s *Server) postAdvice(c fiber.Ctx) error {
	var req adviceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" && req.Skill == "" {
		return badRequest("message or skill is required", nil)
	}

	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}

	ctx, cancel := s.advisorContext(c.Context())
	defer cancel()

	var reply advisor.Reply
	if req.Skill != "" {
		sk, err := s.catalog.Skill(req.Skill)
		if err != nil {
			return mapDomainError(err)
		}
		est, err := s.deps.Aggregator.Estimate(p, sk.ID)
		if err != nil {
			return mapDomainError(err)
		}
		target := 1.0
		if role, err := s.catalog.GetRole(p.SelectedRole); err == nil {
			if lvl, ok := role.Required(sk.ID); ok {
				target = lvl
			}
		}
		reply = s.deps.Advisor.LearningAdvice(ctx, sk.Name, est.Value*10, target*10)
	} else {
		reply = s.deps.Advisor.Chat(ctx, req.Message, s.chatContext(p))
	}
	if reply.Err != nil && s.deps.Advisor.Available() {
		s.logger.Printf("[Advisor] using fallback reply: %v", reply.Err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, adviceResponse{
		Reply:  reply.Text,
		Source: reply.Source,
	})
}

// chatContext describes the selected role and its largest gaps. It is
// empty when no valid role is selected.
func (s *Server) chatContext(p *profile.Profile) string {
	role, err := s.catalog.GetRole(p.SelectedRole)
	if err != nil {
		return ""
	}
	records, err := gap.ComputeGaps(s.deps.Aggregator, p, role.ID)
	if err != nil {
		return ""
	}
	return advisor.GapContext(role.Name, records)
}

func (s *Server) postResume(c fiber.Ctx) error {
	var req resumeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest("text is required", nil)
	}

	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}

	ctx, cancel := s.advisorContext(c.Context())
	defer cancel()
	result := s.deps.Advisor.ExtractResume(ctx, req.Text)
	if result.Err != nil && s.deps.Advisor.Available() {
		s.logger.Printf("[Advisor] resume extraction fell back to keywords: %v", result.Err)
	}

	changed := s.deps.Aggregator.RecordResume(p, resume.Truncate(req.Text), result.Levels, string(result.Source))
	if err := s.saveProfile(c.Context(), p); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, resumeResponse{
		Levels:  p.Resume.Skills,
		Source:  result.Source,
		Updated: nonNil(changed),
	})
}

// getReport renders the HTML gap report for the requested or selected role.
func (s *Server) getReport(c fiber.Ctx) error {
	p, err := s.loadProfile(c)
	if err != nil {
		return err
	}
	roleID, err := roleFor(c, p)
	if err != nil {
		return err
	}

	r, err := report.Build(s.deps.Aggregator, p, roleID, time.Now())
	if err != nil {
		return mapDomainError(err)
	}
	if fiber.Query[bool](c, "advice") && s.deps.Advisor.Available() {
		ctx, cancel := s.advisorContext(c.Context())
		defer cancel()
		r.Commentary = s.deps.Advisor.Enrich(ctx, r.Roadmap, s.cfg.EnrichLimit)
	}

	body, err := report.RenderBytes(r)
	if err != nil {
		return mapDomainError(err)
	}
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+report.FileName(r.RoleName)+`"`)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusOK).Send(body)
}
