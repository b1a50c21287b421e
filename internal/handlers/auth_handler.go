package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/session"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(authService services.AuthService, sessions *session.Manager, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		sessions:    sessions,
	}
}

// Register creates a student account and signs it in
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.signIn(c, user, http.StatusCreated)
}

// Login checks credentials and issues a fresh session
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.signIn(c, user, http.StatusOK)
}

// SSOLogin starts the Casdoor authorization code flow
// @Router /api/auth/sso/login [get]
func (h *AuthHandler) SSOLogin(c *gin.Context) {
	if !h.authService.SSOEnabled() {
		h.handleServiceError(c, services.ErrSSODisabled)
		return
	}

	state, err := h.sessions.BeginSSO(c.Writer, c.Request)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	target, err := h.authService.SSOLoginURL(state)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// SSOCallback finishes the Casdoor authorization code flow started by SSOLogin
// @Router /api/auth/sso/callback [get]
func (h *AuthHandler) SSOCallback(c *gin.Context) {
	if !h.authService.SSOEnabled() {
		h.handleServiceError(c, services.ErrSSODisabled)
		return
	}

	state := c.Query("state")
	if err := h.sessions.ConsumeSSOState(c.Writer, c.Request, state); err != nil {
		if errors.Is(err, session.ErrSSOStateMismatch) {
			h.log(c).Warn("SSO callback state mismatch", "client_ip", c.ClientIP())
			h.handleServiceError(c, services.ErrInvalidSSOState)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	user, err := h.authService.LoginWithSSO(c.Request.Context(), c.Query("code"), state)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.signIn(c, user, http.StatusOK)
}

// Logout destroys the session
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.SignOut(c.Writer, c.Request); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// CurrentUser returns the signed-in user
// @Router /api/auth/user [get]
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *AuthHandler) signIn(c *gin.Context, user *models.User, status int) {
	if err := h.sessions.SignIn(c.Writer, c.Request, user.ID); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	h.LogInfo(c, "User signed in", "signed_in_user", user.ID)
	c.JSON(status, user)
}
