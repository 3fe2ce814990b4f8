package server

import (
	"errors"

	"github.com/abhisek/skillforge/internal/competency"
	"github.com/abhisek/skillforge/internal/profile"
	"github.com/abhisek/skillforge/internal/quiz"
	"github.com/abhisek/skillforge/internal/server/middleware"
	"github.com/gofiber/fiber/v3"
)

// mapDomainError gives engine errors their HTTP status. Unknown errors,
// including storage failures, become 500s.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, competency.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, err.Error(), nil, err)
	case errors.Is(err, profile.ErrInvalidRating):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)
	case errors.Is(err, quiz.ErrNoQuestionsAvailable):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	case errors.Is(err, quiz.ErrSessionClosed):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
}

func badRequest(msg string, cause error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, msg, nil, cause)
}
