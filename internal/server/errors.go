package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	bookmarksdomain "github.com/daybook-app/daybook/internal/bookmarks/domain"
	calendardomain "github.com/daybook-app/daybook/internal/calendar/domain"
	"github.com/daybook-app/daybook/internal/googleoauth"
	identitydomain "github.com/daybook-app/daybook/internal/identity/domain"
	notesdomain "github.com/daybook-app/daybook/internal/notes/domain"
	"github.com/daybook-app/daybook/internal/observability"
	"github.com/daybook-app/daybook/internal/statetoken"
	tasksdomain "github.com/daybook-app/daybook/internal/tasks/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     errorPayload `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{
			Error:     payload,
			RequestID: observability.RequestID(c),
		})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, statetoken.ErrInvalidState):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_state",
			Message: "invalid or expired state token",
		}
	case errors.Is(err, calendardomain.ErrNoRefreshToken):
		return http.StatusBadRequest, errorPayload{
			Type:    "no_refresh_token",
			Message: "no refresh token received from provider",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, identitydomain.ErrInvalidToken),
		errors.Is(err, googleoauth.ErrUnauthorized),
		errors.Is(err, googleoauth.ErrRefreshRevoked),
		errors.Is(err, calendardomain.ErrProviderAuth):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	// Distinct from transient failures: the client must re-prompt connection
	// instead of retrying.
	case errors.Is(err, calendardomain.ErrNotConnected):
		return http.StatusConflict, errorPayload{
			Type:    "calendar_not_connected",
			Message: "calendar is not connected",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, calendardomain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "calendar provider unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, googleoauth.ErrInvalidRequest),
		errors.Is(err, calendardomain.ErrInvalidEvent),
		errors.Is(err, identitydomain.ErrEmailRequired),
		errors.Is(err, tasksdomain.ErrTitleRequired),
		errors.Is(err, notesdomain.ErrTitleRequired),
		errors.Is(err, bookmarksdomain.ErrInvalidURL):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, tasksdomain.ErrTaskNotFound),
		errors.Is(err, notesdomain.ErrNoteNotFound),
		errors.Is(err, bookmarksdomain.ErrBookmarkNotFound),
		errors.Is(err, identitydomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	return payload.Type, http.StatusText(status)
}
