package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"dainiki/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	DaysBack    int
	ShouldClean bool
}

var tagNames = []string{
	"reflection", "gratitude", "work", "family", "travel", "health",
	"reading", "exercise", "cooking", "music", "milestones", "weekend",
}

// Seed populates the database with demo journal data.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 3
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = 60
	}
	log.Printf("🌱 Starting database seeding with %d users over %d days...", opts.NumUsers, opts.DaysBack)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory := NewFactory(db)
	// #nosec G404: acceptable for seeding
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	totalEntries := 0
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		tags := make([]models.Tag, 0, 5)
		for _, name := range pickTags(rng, 5) {
			tag, err := factory.CreateTag(user, name)
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			tags = append(tags, *tag)
		}

		// Walk back from today, skipping some days so streaks look real.
		// The most recent week is always filled to give a current streak.
		today := models.DayOf(time.Now())
		for daysAgo := 0; daysAgo < opts.DaysBack; daysAgo++ {
			if daysAgo > 7 && rng.Intn(4) == 0 {
				continue
			}
			day := today.AddDate(0, 0, -daysAgo)
			_, err := factory.CreateEntry(user, day, func(e *models.JournalEntry) {
				if len(tags) > 0 && rng.Intn(2) == 0 {
					e.Tags = []models.Tag{tags[rng.Intn(len(tags))]}
				}
			})
			if err != nil {
				return fmt.Errorf("failed to create entry: %w", err)
			}
			totalEntries++
		}
	}

	log.Printf("✓ Seeding complete: %d users, %d entries", opts.NumUsers, totalEntries)
	return nil
}

func pickTags(rng *rand.Rand, n int) []string {
	shuffled := append([]string(nil), tagNames...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// clearData removes all rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []string{"entry_tags", "journal_entries", "tags", "login_history", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
