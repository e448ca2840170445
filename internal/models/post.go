// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post in the Inkwell application.
type Post struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Title    string  `gorm:"not null" json:"title"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	FilePath *string `json:"file_path"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	User     User    `gorm:"foreignKey:UserID" json:"user"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PostSummary is the id+title projection returned in profile listings.
type PostSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}
