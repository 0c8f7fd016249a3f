package models

import (
	"fmt"
	"strings"
	"time"
)

// Mood is the 5-point mood scale attached to journal entries.
type Mood int

const (
	MoodVerySad   Mood = 1
	MoodSad       Mood = 2
	MoodNeutral   Mood = 3
	MoodHappy     Mood = 4
	MoodVeryHappy Mood = 5
)

var moodNames = map[Mood]string{
	MoodVerySad:   "VerySad",
	MoodSad:       "Sad",
	MoodNeutral:   "Neutral",
	MoodHappy:     "Happy",
	MoodVeryHappy: "VeryHappy",
}

// String returns the canonical mood name used in analytics keys and exports.
func (m Mood) String() string {
	if name, ok := moodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mood(%d)", int(m))
}

// Valid reports whether the mood is on the 5-point scale.
func (m Mood) Valid() bool {
	_, ok := moodNames[m]
	return ok
}

// Emoji returns a display glyph for the mood.
func (m Mood) Emoji() string {
	switch m {
	case MoodVeryHappy:
		return "😄"
	case MoodHappy:
		return "🙂"
	case MoodSad:
		return "😔"
	case MoodVerySad:
		return "😢"
	default:
		return "😐"
	}
}

// EntryCategory classifies a journal entry.
type EntryCategory string

const (
	CategoryPersonal  EntryCategory = "Personal"
	CategoryWork      EntryCategory = "Work"
	CategoryTravel    EntryCategory = "Travel"
	CategoryHealth    EntryCategory = "Health"
	CategoryFamily    EntryCategory = "Family"
	CategoryFriends   EntryCategory = "Friends"
	CategoryHobbies   EntryCategory = "Hobbies"
	CategoryGoals     EntryCategory = "Goals"
	CategoryGratitude EntryCategory = "Gratitude"
	CategoryOther     EntryCategory = "Other"
)

// Categories lists every valid entry category in display order.
func Categories() []EntryCategory {
	return []EntryCategory{
		CategoryPersonal, CategoryWork, CategoryTravel, CategoryHealth,
		CategoryFamily, CategoryFriends, CategoryHobbies, CategoryGoals,
		CategoryGratitude, CategoryOther,
	}
}

// Valid reports whether the category is one of the fixed set.
func (c EntryCategory) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// JournalEntry is one journal record for one calendar day for one user.
// The composite unique index on (user_id, date) backs the one-entry-per-day
// invariant; the service layer enforces it at write time as well.
type JournalEntry struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index;uniqueIndex:idx_entries_user_date" json:"user_id"`
	Title  string `gorm:"size:200" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	// Date is day-granular; always stored normalized to midnight UTC.
	Date time.Time `gorm:"not null;uniqueIndex:idx_entries_user_date" json:"date"`

	PrimaryMood    Mood  `gorm:"not null" json:"primary_mood"`
	SecondaryMood1 *Mood `json:"secondary_mood1,omitempty"`
	SecondaryMood2 *Mood `json:"secondary_mood2,omitempty"`

	Category   EntryCategory `gorm:"type:varchar(20);not null;default:'Personal'" json:"category"`
	IsFavorite bool          `gorm:"not null;default:false" json:"is_favorite"`
	ImagePath  *string       `json:"image_path,omitempty"`

	Tags []Tag `gorm:"many2many:entry_tags;constraint:OnDelete:CASCADE" json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// WordCount splits content on whitespace and counts non-empty tokens.
func (e *JournalEntry) WordCount() int {
	return len(strings.Fields(e.Content))
}

// DayOf truncates t to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}
