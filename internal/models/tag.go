package models

import "time"

// DefaultTagColor is used when a tag is created without an explicit color.
const DefaultTagColor = "#6366f1"

// Tag is a user-scoped label attached to journal entries. Names are unique
// per user, not globally; two users may each own a "travel" tag.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_tags_user_name" json:"user_id"`
	Name      string    `gorm:"size:50;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	Color     string    `gorm:"size:9;not null;default:'#6366f1'" json:"color"`
	CreatedAt time.Time `json:"created_at"`

	Entries []JournalEntry `gorm:"many2many:entry_tags" json:"entries,omitempty"`
}
