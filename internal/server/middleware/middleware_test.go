package middleware

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestBearerTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerTokenFromHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"app error", NewAppError(fiber.StatusConflict, "busy", nil, nil), 409, "busy"},
		{"app error default message", NewAppError(fiber.StatusNotFound, "", nil, nil), 404, "not found"},
		{"app error 5xx hides message", NewAppError(fiber.StatusBadGateway, "upstream secret", nil, nil), 500, "internal server error"},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), 405, "nope"},
		{"plain error", errors.New("db down"), 500, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg, _ := normalizeError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := NewAppError(fiber.StatusBadRequest, "Bad request", nil, cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Bad request: root", err.Error())
}
