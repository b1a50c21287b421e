package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxUser   = "user"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// MessageResponse is returned by endpoints that have nothing else to say
type MessageResponse struct {
	Message string `json:"message"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// log prefers the request-scoped logger set by utils.ContextLogger
func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{"user_id", h.extractUserID(c)}
	fields = append(fields, additionalFields...)
	h.log(c).LogError(err, message, fields...)
}

// LogInfo logs informational messages with context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{"user_id", h.extractUserID(c)}
	fields = append(fields, additionalFields...)
	h.log(c).Info(message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// currentUser is set by RequireAuth; handlers behind it can rely on it
func currentUser(c *gin.Context) *models.User {
	if user, ok := c.Get(ctxUser); ok {
		if typed, ok := user.(*models.User); ok {
			return typed
		}
	}
	return nil
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	}
	c.AbortWithStatusJSON(statusCode, errorResp)
}

// bindJSON decodes the body and answers 400 itself when it cannot
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return false
	}
	return true
}
