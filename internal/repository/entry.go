package repository

import (
	"context"
	"errors"
	"time"

	"dainiki/internal/cache"
	"dainiki/internal/models"

	"gorm.io/gorm"
)

// EntrySearchFilter holds optional, conjunctive filters for entry search.
// Nil/zero fields are ignored.
type EntrySearchFilter struct {
	Text      string
	StartDate *time.Time
	EndDate   *time.Time
	Mood      *models.Mood
	TagIDs    []uint
}

// EntryRepository defines persistence operations for journal entries.
// Every read and write is scoped by the owning user id.
type EntryRepository interface {
	GetByID(ctx context.Context, userID, id uint) (*models.JournalEntry, error)
	GetByDate(ctx context.Context, userID uint, day time.Time) (*models.JournalEntry, error)
	List(ctx context.Context, userID uint, limit, offset int) ([]models.JournalEntry, error)
	ListAll(ctx context.Context, userID uint) ([]models.JournalEntry, error)
	ListRange(ctx context.Context, userID uint, start, end time.Time) ([]models.JournalEntry, error)
	Search(ctx context.Context, userID uint, filter EntrySearchFilter) ([]models.JournalEntry, error)
	// ExistsOnDate reports whether the user already has an entry on the day,
	// ignoring the entry with excludeID (0 means exclude nothing).
	ExistsOnDate(ctx context.Context, userID uint, day time.Time, excludeID uint) (bool, error)
	// DistinctDates returns the user's entry dates, descending.
	DistinctDates(ctx context.Context, userID uint) ([]time.Time, error)
	// Create persists the entry together with its tag associations atomically.
	Create(ctx context.Context, entry *models.JournalEntry) error
	// Update overwrites the entry row and replaces its tag set wholesale,
	// both in a single transaction.
	Update(ctx context.Context, entry *models.JournalEntry, tags []models.Tag) error
	// Delete removes the entry and its association rows; tags survive.
	Delete(ctx context.Context, entry *models.JournalEntry) error
}

type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository returns a new EntryRepository implementation.
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) GetByID(ctx context.Context, userID, id uint) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	// Ownership lives in the predicate: another user's entry is indistinguishable
	// from a missing one.
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ? AND id = ?", userID, id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Entry", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

func (r *entryRepository) GetByDate(ctx context.Context, userID uint, day time.Time) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ? AND date = ?", userID, models.DayOf(day)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundMessageError("No entry found for this date")
		}
		return nil, models.NewInternalError(err)
	}
	return &entry, nil
}

func (r *entryRepository) List(ctx context.Context, userID uint, limit, offset int) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *entryRepository) ListAll(ctx context.Context, userID uint) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *entryRepository) ListRange(ctx context.Context, userID uint, start, end time.Time) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, models.DayOf(start), models.DayOf(end)).
		Order("date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *entryRepository) Search(ctx context.Context, userID uint, filter EntrySearchFilter) ([]models.JournalEntry, error) {
	query := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID)

	if filter.Text != "" {
		// LOWER LIKE instead of ILIKE so the same query runs on SQLite in tests.
		pattern := "%" + filter.Text + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", pattern, pattern)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", models.DayOf(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", models.DayOf(*filter.EndDate))
	}
	if filter.Mood != nil {
		query = query.Where("primary_mood = ?", *filter.Mood)
	}
	if len(filter.TagIDs) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM entry_tags et WHERE et.journal_entry_id = journal_entries.id AND et.tag_id IN ?)",
			filter.TagIDs,
		)
	}

	var entries []models.JournalEntry
	if err := query.Order("date DESC").Find(&entries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *entryRepository) ExistsOnDate(ctx context.Context, userID uint, day time.Time, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("user_id = ? AND date = ?", userID, models.DayOf(day))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *entryRepository) DistinctDates(ctx context.Context, userID uint) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&models.JournalEntry{}).
		Where("user_id = ?", userID).
		Order("date DESC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return dates, nil
}

func (r *entryRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	// GORM writes the row and its many2many association rows in one transaction.
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateDateError("An entry already exists for this date")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateAnalytics(ctx, entry.UserID)
	return nil
}

func (r *entryRepository) Update(ctx context.Context, entry *models.JournalEntry, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Save(entry).Error; err != nil {
			return err
		}
		// Wholesale tag replacement: old associations out, new set in.
		if err := tx.Model(entry).Association("Tags").Replace(tags); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateDateError("Another entry already exists for this date")
		}
		return models.NewInternalError(err)
	}
	entry.Tags = tags
	cache.InvalidateAnalytics(ctx, entry.UserID)
	return nil
}

func (r *entryRepository) Delete(ctx context.Context, entry *models.JournalEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(entry).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(entry).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateAnalytics(ctx, entry.UserID)
	return nil
}
