// Package seed provides helpers to create demo and test data for the
// journal database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"dainiki/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username:     gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:        gofakeit.Email(),
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateTag constructs and persists a tag for the given user.
func (f *Factory) CreateTag(user *models.User, name string, overrides ...func(*models.Tag)) (*models.Tag, error) {
	tag := &models.Tag{
		UserID: user.ID,
		Name:   name,
		Color:  models.DefaultTagColor,
	}

	for _, override := range overrides {
		override(tag)
	}

	if err := f.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// CreateEntry constructs and persists an entry for the given user on the
// given day. The day is normalized to midnight UTC before saving.
func (f *Factory) CreateEntry(user *models.User, day time.Time, overrides ...func(*models.JournalEntry)) (*models.JournalEntry, error) {
	categories := models.Categories()
	entry := &models.JournalEntry{
		UserID:      user.ID,
		Title:       gofakeit.Sentence(4),
		Content:     gofakeit.Paragraph(2, 4, 8, "\n"),
		Date:        models.DayOf(day),
		PrimaryMood: models.Mood(f.rng.Intn(5) + 1),
		Category:    categories[f.rng.Intn(len(categories))],
		IsFavorite:  f.rng.Intn(10) == 0,
	}

	// About a third of entries carry a secondary mood.
	if f.rng.Intn(3) == 0 {
		mood := models.Mood(f.rng.Intn(5) + 1)
		entry.SecondaryMood1 = &mood
	}

	for _, override := range overrides {
		override(entry)
	}

	if err := f.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
