package repository

import (
	"context"
	"testing"
	"time"

	"dainiki/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.JournalEntry{},
		&models.Tag{},
	))
	return db
}

func mustDay(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedUserWithEntries(t *testing.T, db *gorm.DB) (uint, []models.Tag) {
	t.Helper()
	user := models.User{Username: "entries", Email: "entries@example.com", PasswordHash: "h"}
	require.NoError(t, db.Create(&user).Error)

	tags := []models.Tag{
		{UserID: user.ID, Name: "alpha", Color: models.DefaultTagColor},
		{UserID: user.ID, Name: "beta", Color: models.DefaultTagColor},
	}
	require.NoError(t, db.Create(&tags).Error)

	entries := []models.JournalEntry{
		{UserID: user.ID, Content: "first", Date: mustDay("2026-03-01"), PrimaryMood: models.MoodHappy, Category: models.CategoryPersonal, Tags: []models.Tag{tags[0]}},
		{UserID: user.ID, Content: "second", Date: mustDay("2026-03-02"), PrimaryMood: models.MoodSad, Category: models.CategoryWork, Tags: []models.Tag{tags[1]}},
		{UserID: user.ID, Content: "third", Date: mustDay("2026-03-04"), PrimaryMood: models.MoodHappy, Category: models.CategoryPersonal, Tags: []models.Tag{tags[0], tags[1]}},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}
	return user.ID, tags
}

func TestEntryRepository_UniqueIndexBacksDuplicateRule(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	user := models.User{Username: "idx", Email: "idx@example.com", PasswordHash: "h"}
	require.NoError(t, db.Create(&user).Error)

	first := &models.JournalEntry{UserID: user.ID, Content: "a", Date: mustDay("2026-03-01"), PrimaryMood: models.MoodHappy, Category: models.CategoryPersonal}
	require.NoError(t, repo.Create(ctx, first))

	// The database itself rejects a second row on the same (user, date),
	// even if the service-level check were bypassed.
	dup := &models.JournalEntry{UserID: user.ID, Content: "b", Date: mustDay("2026-03-01"), PrimaryMood: models.MoodSad, Category: models.CategoryPersonal}
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeDuplicateDate))
}

func TestEntryRepository_SearchByTags(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	userID, tags := seedUserWithEntries(t, db)

	results, err := repo.Search(ctx, userID, EntrySearchFilter{TagIDs: []uint{tags[1].ID}})
	require.NoError(t, err)
	assert.Len(t, results, 2, "beta is on two entries")

	results, err = repo.Search(ctx, userID, EntrySearchFilter{TagIDs: []uint{tags[0].ID, tags[1].ID}})
	require.NoError(t, err)
	assert.Len(t, results, 3, "tag filter matches any of the given tags")
}

func TestEntryRepository_SearchCombinedFilters(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	userID, tags := seedUserWithEntries(t, db)

	mood := models.MoodHappy
	start := mustDay("2026-03-02")
	results, err := repo.Search(ctx, userID, EntrySearchFilter{
		Mood:      &mood,
		StartDate: &start,
		TagIDs:    []uint{tags[0].ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "third", results[0].Content)
}

func TestEntryRepository_DistinctDates(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	userID, _ := seedUserWithEntries(t, db)

	dates, err := repo.DistinctDates(ctx, userID)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.True(t, dates[0].After(dates[1]), "newest first")
	assert.Equal(t, mustDay("2026-03-04"), models.DayOf(dates[0]))
}

func TestEntryRepository_GetByDateNormalizes(t *testing.T) {
	t.Parallel()
	db := setupSQLiteDB(t)
	repo := NewEntryRepository(db)
	ctx := context.Background()

	userID, _ := seedUserWithEntries(t, db)

	entry, err := repo.GetByDate(ctx, userID, mustDay("2026-03-02").Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "second", entry.Content)

	_, err = repo.GetByDate(ctx, userID, mustDay("2026-03-03"))
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
