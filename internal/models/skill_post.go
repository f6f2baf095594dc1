package models

import (
	"time"

	"gorm.io/gorm"
)

// PostVisibility is the lifecycle state of a SkillPost.
type PostVisibility string

const (
	PostActive    PostVisibility = "active"
	PostWithdrawn PostVisibility = "withdrawn"
)

// ParsePostVisibility validates a client-supplied visibility value.
func ParsePostVisibility(s string) (PostVisibility, bool) {
	switch PostVisibility(s) {
	case PostActive:
		return PostActive, true
	case PostWithdrawn:
		return PostWithdrawn, true
	default:
		return "", false
	}
}

// SkillPost advertises what an identity offers and seeks. OfferedSkills is a
// snapshot of the owner's profile at creation and never changes afterwards.
type SkillPost struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OwnerID       uint           `gorm:"not null;index" json:"owner_id"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	OfferedSkills []string       `gorm:"type:text;serializer:json" json:"offered_skills"`
	SoughtSkills  []string       `gorm:"type:text;serializer:json" json:"sought_skills"`
	Visibility    PostVisibility `gorm:"size:16;not null;default:active;index" json:"visibility"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// Visible reports whether the post is shown to identities other than its owner.
func (p *SkillPost) Visible() bool {
	return p.Visibility == PostActive
}
