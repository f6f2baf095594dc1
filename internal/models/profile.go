package models

import "time"

// Profile holds the academic details and offered skills of one identity.
type Profile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Alias         string    `gorm:"size:50" json:"alias"`
	FirstName     string    `gorm:"size:100" json:"first_name"`
	LastName      string    `gorm:"size:100" json:"last_name"`
	Career        string    `gorm:"size:150" json:"career"`
	Area          string    `gorm:"size:150" json:"area"`
	Bio           string    `gorm:"type:text" json:"bio"`
	PhotoURL      string    `gorm:"size:500" json:"photo_url"`
	OfferedSkills []string  `gorm:"type:text;serializer:json" json:"offered_skills"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasOfferedSkills reports whether at least one offered skill is set.
func (p *Profile) HasOfferedSkills() bool {
	return p != nil && len(p.OfferedSkills) > 0
}
