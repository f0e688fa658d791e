package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docchat/core"
)

// ValidationStatusCode is the status_code field of every ValidationError.
const ValidationStatusCode = 10422

var (
	// ErrNoFiles is returned when an ingest request carries no files.
	ErrNoFiles = errors.New("no files uploaded")

	// ErrInvalidFilename is returned for an upload whose name has no base name.
	ErrInvalidFilename = errors.New("invalid file name")

	// ErrAskerRequired is returned when NewServer gets a nil Asker.
	ErrAskerRequired = errors.New("asker is required")

	// ErrIngesterRequired is returned when NewServer gets a nil Ingester.
	ErrIngesterRequired = errors.New("ingester is required")

	// ErrEraserRequired is returned when NewServer gets a nil Eraser.
	ErrEraserRequired = errors.New("eraser is required")
)

// ValidationError is the body of a 422 response.
type ValidationError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// MessageResponse is the body of every other JSON response.
type MessageResponse struct {
	Message string `json:"message"`
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrEmptyConversation) ||
		errors.Is(err, core.ErrInvalidConversation) ||
		errors.Is(err, core.ErrInvalidRole) ||
		errors.Is(err, core.ErrEmptyContent)
}

func (s *Server) rejectRequest(c *gin.Context, err error) {
	s.logger.Error("invalid request", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationError{
		StatusCode: ValidationStatusCode,
		Message:    err.Error(),
	})
}

func (s *Server) failRequest(c *gin.Context, err error) {
	s.logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, MessageResponse{Message: err.Error()})
}
