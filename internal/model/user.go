package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// Identity is the authenticated caller extracted from a validated bearer
// token. It is threaded explicitly into every service call rather than held
// in any ambient/global state.
type Identity struct {
	UserID uint
	Role   string
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleTeacher || i.Role == RoleAdmin
}

type User struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Email          string         `json:"email" gorm:"not null;uniqueIndex"`
	Password       string         `json:"-"` // bcrypt hash; empty for OAuth-only users
	Provider       string         `json:"provider" gorm:"default:'local'"`
	ProviderID     *string        `json:"provider_id,omitempty"`
	Name           string         `json:"name" gorm:"not null"`
	Role           string         `json:"role" gorm:"default:'student';index"`
	Preferences    datatypes.JSON `json:"preferences,omitempty"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	RefreshTokenID *string        `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
