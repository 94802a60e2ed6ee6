package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	if caller := CallerIdentity(c); caller != nil {
		fields = append(fields, "user_id", caller.UID)
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// ===== HELPERS =====

func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: err.Error(),
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// requireIdentity returns the authenticated caller or writes a 401.
func (h *BaseHandler) requireIdentity(c *gin.Context) *identity.Identity {
	caller := CallerIdentity(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	}
	return caller
}

// handleServiceError maps service errors onto HTTP responses. The order
// matters: a denial and a backend authorization failure both wrap
// authorization but must land on different status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationError,
		})
		return
	}

	var deniedError *services.DeniedError
	if errors.As(err, &deniedError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Code:    "access_denied",
			Details: map[string]interface{}{
				"role":   deniedError.Role,
				"reason": deniedError.Reason,
			},
		})
		return
	}

	if services.IsAuthorizationError(err) {
		h.LogError(c, err, "Authorization check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Authorization check failed, please try again",
			Code:    "authorization_error",
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Attempt not found",
		})
	case errors.Is(err, services.ErrOutsideWindow):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Exam is not open at this time",
			Code:    "outside_window",
		})
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Maximum attempts for this exam reached",
			Code:    "attempt_limit",
		})
	case errors.Is(err, services.ErrAttemptAlreadyFinalized):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt already finalized",
		})
	case errors.Is(err, services.ErrUnknownQuestion):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer refers to an unknown question",
		})
	case services.IsStoreUnavailable(err):
		h.LogError(c, err, "Store unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Storage temporarily unavailable, please retry",
			Code:    "store_unavailable",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
