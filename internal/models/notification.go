package models

import "time"

// NotificationKind enumerates the events that fan out to participants.
type NotificationKind string

const (
	NotificationNewChat           NotificationKind = "new_chat"
	NotificationNewMessage        NotificationKind = "new_message"
	NotificationExchangeCompleted NotificationKind = "exchange_completed"
	NotificationChatRated         NotificationKind = "chat_rated"
)

// Valid reports whether k is one of the declared kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationNewChat, NotificationNewMessage, NotificationExchangeCompleted, NotificationChatRated:
		return true
	default:
		return false
	}
}

// Notification belongs solely to its target identity.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Kind      NotificationKind `gorm:"size:32;not null" json:"kind"`
	Body      string           `gorm:"type:text;not null" json:"body"`
	ChatID    *uint            `json:"chat_id,omitempty"`
	PostID    *uint            `json:"post_id,omitempty"`
	RatingID  *uint            `json:"rating_id,omitempty"`
	IsRead    bool             `gorm:"not null;default:false;index:idx_notifications_user_read" json:"is_read"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
}
