// Package models contains data structures for the application's domain models.
package models

import "time"

// User owns all journal data. Every entry, tag, and login record belongs
// to exactly one user and is queried through its user id.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:100;unique;not null" json:"username"`
	Email        string     `gorm:"unique;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	// PinHash is nil when the user has not configured a PIN.
	PinHash     *string    `json:"-"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Entries []JournalEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
	Tags    []Tag          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

// HasPin reports whether the user has a PIN configured.
func (u *User) HasPin() bool {
	return u.PinHash != nil && *u.PinHash != ""
}
