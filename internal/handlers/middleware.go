package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/session"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session cookie to a user
type AuthMiddleware struct {
	BaseHandler
	sessions *session.Manager
	auth     services.AuthService
}

func NewAuthMiddleware(sessions *session.Manager, auth services.AuthService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
		auth:        auth,
	}
}

// RequireAuth rejects anonymous requests and stores the user under "user" and its id under "user_id"
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := m.sessions.UserID(c.Request)
		if err != nil {
			m.LogError(c, err, "Failed to read session")
			m.RespondWithError(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		if userID == "" {
			m.RespondWithError(c, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), userID)
		if err != nil {
			m.handleServiceError(c, err)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxUser, user)
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			m.RespondWithError(c, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		m.RespondWithError(c, http.StatusForbidden, "Access denied", nil)
	}
}
