package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto fixed client messages.
// Anything unrecognized is a 500 whose detail stays in the log.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: validationErrors.First(),
			Details: validationErrors,
		})
		return
	}

	var transitionError *services.TransitionError
	if errors.As(err, &transitionError) {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid status transition",
			Details: map[string]interface{}{
				"from":    transitionError.From,
				"to":      transitionError.To,
				"allowed": transitionError.Allowed,
				"final":   transitionError.Final,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	case errors.Is(err, services.ErrInvalidSSOState):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Sign-in request expired or was not started here"})
	case errors.Is(err, services.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
	case errors.Is(err, services.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	case errors.Is(err, services.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: "Email already registered"})
	case errors.Is(err, services.ErrClassNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "Class not found"})
	case errors.Is(err, services.ErrEnrollmentNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "Enrollment not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrSSODisabled):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Message: "Single sign-on is not configured"})
	case errors.Is(err, services.ErrRoomCodeExhausted):
		h.LogError(c, err, "Room code allocation failed")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Could not allocate a room code, please retry"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
