package models

import (
	"time"
)

// ModReply is a suggested moderator reply for a moderation case.
type ModReply struct {
	ID               uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ModerationCaseID uint            `gorm:"not null;index" json:"moderation_case_id"`
	ModerationCase   *ModerationCase `gorm:"foreignKey:ModerationCaseID" json:"moderation_case,omitempty"`
	ReplyText        string          `gorm:"type:text;not null" json:"reply_text"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
