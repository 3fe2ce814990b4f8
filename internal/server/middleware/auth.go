package middleware

import (
	"errors"
	"strings"

	"github.com/abhisek/skillforge/internal/auth"
	"github.com/gofiber/fiber/v3"
)

// Locals keys set by AuthMiddleware.
const (
	CtxProfileKey  = "profile_key"
	CtxProfileName = "profile_name"
)

type AuthMiddleware struct {
	tokens auth.Service
}

func NewAuthMiddleware(tokens auth.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxProfileKey, claims.Key())
		c.Locals(CtxProfileName, claims.Profile)
		return c.Next()
	}
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
