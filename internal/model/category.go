package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts. Only admins create, rename or delete categories.
type Category struct {
	ID          string    `json:"id" gorm:"type:char(24);primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	Description string    `json:"description,omitempty" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// BeforeCreate sets the id before creating the record.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
