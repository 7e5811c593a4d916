package model

import (
	"time"

	"gorm.io/gorm"
)

// Comment belongs to exactly one post and is never edited after creation.
type Comment struct {
	ID        string    `json:"id" gorm:"type:char(24);primaryKey"`
	PostID    string    `json:"post_id" gorm:"type:char(24);not null;index"`
	UserID    string    `json:"user_id" gorm:"type:char(24);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets the id before creating the record.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
