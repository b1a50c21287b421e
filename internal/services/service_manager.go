package services

import (
	"log/slog"

	"github.com/SAP-F-2025/classroom-service/internal/cache"
	"github.com/SAP-F-2025/classroom-service/internal/events"
	"github.com/SAP-F-2025/classroom-service/internal/metrics"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
)

// Dependencies is everything the services share. SSO, Notifier and Metrics may be nil.
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Notifier  ChatNotifier
	SSO       IdentityProvider
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Validator *validator.Validator
}

type serviceManager struct {
	auth       AuthService
	class      ClassService
	enrollment EnrollmentService
	chat       ChatService
	recording  RecordingService
	user       UserService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	return &serviceManager{
		auth:       NewAuthService(deps.Repo, deps.SSO, deps.Logger, deps.Validator),
		class:      NewClassService(deps.Repo, deps.Cache, deps.Publisher, deps.Metrics, deps.Logger, deps.Validator),
		enrollment: NewEnrollmentService(deps.Repo, deps.Publisher, deps.Metrics, deps.Logger, deps.Validator),
		chat:       NewChatService(deps.Repo, deps.Notifier, deps.Publisher, deps.Metrics, deps.Logger, deps.Validator),
		recording:  NewRecordingService(deps.Repo, deps.Logger, deps.Validator),
		user:       NewUserService(deps.Repo, deps.Logger, deps.Validator),
	}
}

func (m *serviceManager) Auth() AuthService             { return m.auth }
func (m *serviceManager) Class() ClassService           { return m.class }
func (m *serviceManager) Enrollment() EnrollmentService { return m.enrollment }
func (m *serviceManager) Chat() ChatService             { return m.chat }
func (m *serviceManager) Recording() RecordingService   { return m.recording }
func (m *serviceManager) User() UserService             { return m.user }
