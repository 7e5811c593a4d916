package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultFeaturedImage is used when a post is created without an image.
const DefaultFeaturedImage = "default-post.jpg"

// Post is a blog article. AuthorID is set once on creation and never changes.
type Post struct {
	ID            string                      `json:"id" gorm:"type:char(24);primaryKey"`
	Title         string                      `json:"title" gorm:"size:200;not null"`
	Slug          string                      `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Content       string                      `json:"content" gorm:"type:text;not null"`
	Excerpt       string                      `json:"excerpt" gorm:"size:300"`
	FeaturedImage string                      `json:"featured_image" gorm:"size:255"`
	AuthorID      string                      `json:"author_id" gorm:"type:char(24);not null;index"`
	CategoryID    string                      `json:"category_id" gorm:"type:char(24);not null;index"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	ViewCount     int64                       `json:"view_count" gorm:"not null"`
	IsPublished   bool                        `json:"is_published" gorm:"not null;index"`
	CreatedAt     time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time                   `json:"updated_at"`

	// Relations
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Comments []Comment `json:"comments" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets the id and defaults before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.FeaturedImage == "" {
		p.FeaturedImage = DefaultFeaturedImage
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}
