package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"extractos/internal/domain"
	"extractos/internal/parser"
	"extractos/internal/schema"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain and pipeline errors to HTTP status codes
// and error codes. Request-shape problems are the caller's fault (4xx); model
// backend trouble surfaces as 429 or 502.
func MapDomainError(err error) (status int, code, msg string) {
	var compErr *schema.CompilationError
	var valErr *schema.ValidationError
	var rateLimitErr *parser.RateLimitError
	var backendErr *parser.BackendError
	var parseErr *parser.ResponseParseError

	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyBatch):
		return http.StatusBadRequest, "EMPTY_BATCH", "no processable files in request"
	case errors.As(err, &compErr):
		return http.StatusBadRequest, "INVALID_SCHEMA", err.Error()
	case errors.Is(err, domain.ErrInvalidProviderConfig):
		return http.StatusBadRequest, "INVALID_PROVIDER_CONFIG", "provider configuration is incomplete; azure requires endpoint, deployment, and api version"
	case errors.Is(err, domain.ErrUnsupportedProvider):
		return http.StatusBadRequest, "UNSUPPORTED_PROVIDER", "unsupported provider; allowed: openai, azure"
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, "SCHEMA_VALIDATION_FAILED", err.Error()
	case errors.As(err, &rateLimitErr):
		return http.StatusTooManyRequests, "RATE_LIMITED", "model provider rate limit exceeded; retry later"
	case errors.As(err, &parseErr):
		return http.StatusBadGateway, "UNPARSEABLE_RESPONSE", "model response could not be parsed as JSON"
	case errors.As(err, &backendErr):
		return http.StatusBadGateway, "BACKEND_ERROR", "model provider request failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
