package models

import "time"

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// Rating is one participant's score for a chat. (ChatID, RaterID) is unique.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;uniqueIndex:idx_ratings_chat_rater" json:"chat_id"`
	RaterID   uint      `gorm:"not null;uniqueIndex:idx_ratings_chat_rater" json:"rater_id"`
	Score     int       `gorm:"not null" json:"score"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
