package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/classroom-service/internal/errors"
	"github.com/SAP-F-2025/classroom-service/internal/models"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Auth specific errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSSODisabled        = errors.New("single sign-on is not configured")
	ErrInvalidSSOState    = errors.New("single sign-on state does not match the session")

	// Class specific errors
	ErrClassNotFound           = errors.New("class not found")
	ErrInvalidStatusTransition = errors.New("invalid class status transition")
	ErrRoomCodeExhausted       = errors.New("could not allocate a unique room code")

	// Enrollment specific errors
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// User specific errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// TransitionError names the rejected lifecycle edge and, when known, where the class may go instead
type TransitionError struct {
	ClassID string   `json:"class_id"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Allowed []string `json:"allowed,omitempty"`
	Final   bool     `json:"final"`
}

func (te *TransitionError) Error() string {
	return fmt.Sprintf("cannot change class status from %s to %s", te.From, te.To)
}

func (te *TransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ===== ERROR HELPERS =====

// invalid reports a single field failure found outside struct tag validation
func invalid(field, message string, value interface{}) error {
	return apperrors.Invalid(field, message, value)
}

func NewTransitionError(classID string, from, to models.ClassStatus) *TransitionError {
	te := &TransitionError{
		ClassID: classID,
		From:    string(from),
		To:      string(to),
		Final:   from.IsTerminal(),
	}
	for _, next := range from.NextStatuses() {
		te.Allowed = append(te.Allowed, string(next))
	}
	return te
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSSODisabled)
}

// IsUnauthorized checks if error means the caller is not signed in
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidSSOState)
}

// IsForbidden checks if error means the caller lacks permission
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error is a rejected request that is not a field error
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition) || errors.Is(err, ErrEmailTaken)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrEmailTaken)
}
