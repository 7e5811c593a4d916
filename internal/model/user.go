package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultAvatar is assigned to users that never uploaded one.
const DefaultAvatar = "default-avatar.png"

// User represents an authenticated user in the system.
type User struct {
	ID           string    `json:"id" gorm:"type:char(24);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email        string    `json:"email,omitempty" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role,omitempty" gorm:"size:20;not null"`
	Avatar       string    `json:"avatar,omitempty" gorm:"size:255"`
	Bio          string    `json:"bio,omitempty" gorm:"size:500"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// BeforeCreate fills the id and defaults before inserting the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Avatar == "" {
		u.Avatar = DefaultAvatar
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
