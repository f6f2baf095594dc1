package models

import "time"

// ParticipantRole is fixed when a participant row is created.
type ParticipantRole string

const (
	RoleAuthor     ParticipantRole = "author"
	RoleRespondent ParticipantRole = "respondent"
)

// ExchangeChat is a negotiation between a post's author and one respondent.
// Completed only ever moves from false to true.
type ExchangeChat struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	PostID       uint              `gorm:"not null;index" json:"post_id"`
	Post         *SkillPost        `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Completed    bool              `gorm:"not null;default:false" json:"completed"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Participants []ChatParticipant `gorm:"foreignKey:ChatID" json:"participants,omitempty"`
	Messages     []ChatMessage     `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

// Participant returns the participant row for userID, if any.
func (c *ExchangeChat) Participant(userID uint) (*ChatParticipant, bool) {
	for i := range c.Participants {
		if c.Participants[i].UserID == userID {
			return &c.Participants[i], true
		}
	}
	return nil, false
}

// OtherParticipantIDs lists every participant except userID.
func (c *ExchangeChat) OtherParticipantIDs(userID uint) []uint {
	out := make([]uint, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.UserID != userID {
			out = append(out, p.UserID)
		}
	}
	return out
}

// ChatParticipant binds one identity to one chat. (ChatID, UserID) is unique.
type ChatParticipant struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ChatID    uint            `gorm:"not null;uniqueIndex:idx_chat_participants_chat_user" json:"chat_id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_chat_participants_chat_user;index" json:"user_id"`
	Role      ParticipantRole `gorm:"size:16;not null" json:"role"`
	HasRated  bool            `gorm:"not null;default:false" json:"has_rated"`
	CreatedAt time.Time       `json:"created_at"`
}

// ChatMessage is immutable once created; ID order is creation order within a chat.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
