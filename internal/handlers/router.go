package handlers

import (
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/realtime"
	"github.com/SAP-F-2025/classroom-service/internal/services"
	"github.com/SAP-F-2025/classroom-service/internal/session"
	"github.com/SAP-F-2025/classroom-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	auth              *AuthMiddleware
	metrics           *metrics.Metrics
	authHandler       *AuthHandler
	classHandler      *ClassHandler
	enrollmentHandler *EnrollmentHandler
	chatHandler       *ChatHandler
	recordingHandler  *RecordingHandler
	userHandler       *UserHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	sessions *session.Manager,
	streamer *realtime.ChatStreamer,
	m *metrics.Metrics,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		auth:              NewAuthMiddleware(sessions, serviceManager.Auth(), logger),
		metrics:           m,
		authHandler:       NewAuthHandler(serviceManager.Auth(), sessions, logger),
		classHandler:      NewClassHandler(serviceManager.Class(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		chatHandler:       NewChatHandler(serviceManager.Chat(), serviceManager.Class(), streamer, m, logger),
		recordingHandler:  NewRecordingHandler(serviceManager.Recording(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)
	if hm.metrics != nil {
		router.Use(hm.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	requireAuth := hm.auth.RequireAuth()
	teachers := hm.auth.RequireRoles(models.RoleLecturer, models.RoleAdmin)
	admins := hm.auth.RequireRoles(models.RoleAdmin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", hm.authHandler.Register)
			auth.POST("/login", hm.authHandler.Login)
			auth.GET("/sso/login", hm.authHandler.SSOLogin)
			auth.GET("/sso/callback", hm.authHandler.SSOCallback)
			auth.POST("/logout", requireAuth, hm.authHandler.Logout)
			auth.GET("/user", requireAuth, hm.authHandler.CurrentUser)
		}

		classes := api.Group("/classes")
		{
			classes.GET("", hm.classHandler.ListUpcoming)
			classes.GET("/room/:roomCode", hm.classHandler.GetByRoomCode)
			classes.GET("/:id", hm.classHandler.GetClass)
			classes.GET("/:id/history", requireAuth, hm.classHandler.History)
			classes.POST("", requireAuth, teachers, hm.classHandler.CreateClass)
			classes.PATCH("/:id/status", requireAuth, hm.classHandler.UpdateStatus)
		}
		api.GET("/lecturer/classes", requireAuth, hm.classHandler.ListMine)

		enrollments := api.Group("/enrollments", requireAuth)
		{
			enrollments.POST("", hm.enrollmentHandler.Enroll)
			enrollments.GET("/student", hm.enrollmentHandler.ListMine)
			enrollments.GET("/class/:classId", hm.enrollmentHandler.ListByClass)
			enrollments.GET("/class/:classId/export", hm.enrollmentHandler.ExportAttendance)
			enrollments.POST("/attendance", hm.enrollmentHandler.MarkAttendance)
		}

		recordings := api.Group("/recordings")
		{
			recordings.GET("", hm.recordingHandler.ListRecordings)
			recordings.GET("/class/:classId", hm.recordingHandler.ListByClass)
			recordings.POST("", requireAuth, hm.recordingHandler.CreateRecording)
		}

		chat := api.Group("/chat", requireAuth)
		{
			chat.POST("", hm.chatHandler.SendMessage)
			chat.GET("/:classId", hm.chatHandler.ListMessages)
			chat.GET("/:classId/ws", hm.chatHandler.Stream)
		}

		users := api.Group("/users", requireAuth, admins)
		{
			users.GET("", hm.userHandler.ListUsers)
			users.PATCH("/:id/role", hm.userHandler.UpdateRole)
		}
	}
}
