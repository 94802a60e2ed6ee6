package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User mirrors the profile the identity provider exposes for a caller.
// ID is the provider's stable unique id; the service never mints its own.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"size:20;index" validate:"omitempty,user_role"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// RoleRecord is a role-scoped document keyed by the identity provider's
// stable UID. The embedded UID marker must equal the caller's
// authenticated identity exactly for the role to be granted.
type RoleRecord struct {
	UID       string    `json:"uid" gorm:"primaryKey;size:255"`
	Role      UserRole  `json:"role" gorm:"primaryKey;size:20" validate:"required,user_role"`
	Marker    string    `json:"marker" gorm:"not null;size:255"`
	GrantedBy string    `json:"granted_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}

func (RoleRecord) TableName() string {
	return "role_records"
}
