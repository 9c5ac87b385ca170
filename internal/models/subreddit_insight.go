package models

import (
	"time"
)

// SubredditInsight is one recorded sample of a subreddit metric,
// e.g. flagged_users or trending_posts.
type SubredditInsight struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubredditName string    `gorm:"size:100;not null;index" json:"subreddit_name"`
	Metric        string    `gorm:"size:50;not null" json:"metric"`
	Value         float64   `gorm:"type:double precision;not null" json:"value"`
	RecordedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP;autoCreateTime" json:"recorded_at"`
}
