package models

import (
	"time"
)

const (
	ActionDelete  = "delete"
	ActionWarn    = "warn"
	ActionApprove = "approve"
)

// ModerationCase records a moderator decision taken on a post.
type ModerationCase struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"size:255;not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Action    string    `gorm:"size:50;not null" json:"action"` // delete, warn, approve
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
