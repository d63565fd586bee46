package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/spacedrep"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps a service error onto a status. Store failures
// are reported as temporarily unavailable; the learner's data is unchanged
// unless the code says the change was partially applied.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case isValidation(err):
		respondError(c, http.StatusBadRequest, "invalid_request", err)
	case progression.IsPartial(err):
		respondError(c, http.StatusServiceUnavailable, "partial_application",
			errors.New("the change was partially saved; check progress before retrying"))
	default:
		respondError(c, http.StatusServiceUnavailable, "unavailable",
			errors.New("progress is temporarily unavailable, try again shortly"))
	}
}

func isValidation(err error) bool {
	return progression.IsValidation(err) ||
		errors.Is(err, spacedrep.ErrQualityOutOfRange) ||
		errors.Is(err, content.ErrEmptyDeck) ||
		errors.Is(err, content.ErrEmptyFront) ||
		errors.Is(err, content.ErrDuplicateID)
}
