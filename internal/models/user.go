package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleLecturer UserRole = "lecturer"
	RoleStudent  UserRole = "student"
)

// UserRoles lists every valid role
var UserRoles = []UserRole{RoleAdmin, RoleLecturer, RoleStudent}

func (r UserRole) IsValid() bool {
	for _, role := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CanTeach reports whether the role may create and run classes
func (r UserRole) CanTeach() bool {
	return r == RoleLecturer || r == RoleAdmin
}

type User struct {
	ID           string   `json:"id" gorm:"primaryKey;size:64"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"size:255"`
	FirstName    string   `json:"firstName" gorm:"size:100"`
	LastName     string   `json:"lastName" gorm:"size:100"`
	Role         UserRole `json:"role" gorm:"not null;default:student;size:20;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// FullName joins first and last name, skipping blanks
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
