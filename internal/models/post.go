package models

import (
	"time"
)

// Post is a submission mirrored from the subreddit.
type Post struct {
	ID        string     `gorm:"primaryKey;size:255" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Flair     *string    `gorm:"size:50" json:"flair"` // assigned by an external classifier
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ImageURLs StringList `gorm:"column:image_urls" json:"image_urls"`
}
