// Package models contains the GORM entities and error taxonomy of the exchange platform.
package models

import "time"

// User mirrors an identity issued by the identity gateway. Only the fields the
// exchange workflow needs are kept here.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:150" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsModerator  bool      `gorm:"not null;default:false" json:"is_moderator"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
