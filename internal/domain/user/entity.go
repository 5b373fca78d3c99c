// internal/domain/user/entity.go
package user

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the user's role
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a storefront account
type User struct {
	ID           string         `gorm:"primaryKey;size:40" json:"id"`
	Name         string         `gorm:"not null;size:100" json:"name"`
	Email        string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string         `gorm:"not null;size:255" json:"-"`
	Role         Role           `gorm:"not null;size:10;default:'user'" json:"role"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
