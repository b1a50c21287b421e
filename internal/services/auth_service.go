package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/classroom-service/internal/models"
	"github.com/SAP-F-2025/classroom-service/internal/repositories"
	"github.com/SAP-F-2025/classroom-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	repo      repositories.Repository
	sso       IdentityProvider
	logger    *slog.Logger
	ops       *ServiceLogger
	validator *validator.Validator

	hashCost  int
	dummyHash []byte
}

// NewAuthService builds the auth service. sso may be nil, which disables LoginWithSSO.
func NewAuthService(repo repositories.Repository, sso IdentityProvider, logger *slog.Logger, validator *validator.Validator) AuthService {
	return newAuthService(repo, sso, logger, validator, bcrypt.DefaultCost)
}

func newAuthService(repo repositories.Repository, sso IdentityProvider, logger *slog.Logger, validator *validator.Validator, cost int) *authService {
	// compared against for unknown emails so both login failures cost one bcrypt run
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("classroom-unknown-user"), cost)

	return &authService{
		repo:      repo,
		sso:       sso,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "classroom", Component: "auth"}),
		validator: validator,
		hashCost:  cost,
		dummyHash: dummyHash,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (user *models.User, err error) {
	op := s.ops.WithOperation(ctx, "auth.register", "")
	defer func() { op.LogResult(userIDOf(user), "user", err) }()

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.RoleStudent,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (user *models.User, err error) {
	op := s.ops.WithOperation(ctx, "auth.login", "")
	defer func() { op.LogResult(userIDOf(user), "user", err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	found, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.logFailedLogin(ctx, "")
		return nil, ErrInvalidCredentials
	}

	if found.PasswordHash == "" {
		// SSO-only account
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.logFailedLogin(ctx, found.ID)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error("Stored password hash is unreadable", "user_id", found.ID, "error", err)
		}
		s.logFailedLogin(ctx, found.ID)
		return nil, ErrInvalidCredentials
	}

	return found, nil
}

func (s *authService) Authenticate(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *authService) SSOEnabled() bool {
	return s.sso != nil
}

func (s *authService) SSOLoginURL(state string) (string, error) {
	if s.sso == nil {
		return "", ErrSSODisabled
	}
	if strings.TrimSpace(state) == "" {
		return "", invalid("state", "is required", state)
	}
	return s.sso.AuthCodeURL(state)
}

// LoginWithSSO upserts the provider's user. New users start as students and
// later logins refresh the profile without touching the role.
func (s *authService) LoginWithSSO(ctx context.Context, code, state string) (user *models.User, err error) {
	op := s.ops.WithOperation(ctx, "auth.sso_login", "")
	defer func() { op.LogResult(userIDOf(user), "user", err) }()

	if s.sso == nil {
		return nil, ErrSSODisabled
	}
	if strings.TrimSpace(code) == "" {
		return nil, invalid("code", "is required", code)
	}

	identity, err := s.sso.Exchange(ctx, code, state)
	if err != nil {
		s.logger.Warn("SSO code exchange failed", "error", err)
		return nil, ErrUnauthorized
	}
	if identity.ID == "" || identity.Email == "" {
		return nil, ErrUnauthorized
	}

	user = &models.User{
		ID:        identity.ID,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Role:      models.RoleStudent,
	}
	if err := s.repo.User().Upsert(ctx, nil, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *authService) logFailedLogin(ctx context.Context, userID string) {
	s.ops.LogSecurityEvent(ctx, SecurityEvent{
		Type:        SecurityEventFailedLogin,
		UserID:      userID,
		Description: "failed login attempt",
	})
}

func userIDOf(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}
