package service

import (
	"context"
	"time"

	"dainiki/internal/cache"
	"dainiki/internal/models"
	"dainiki/internal/observability"
	"dainiki/internal/repository"
)

// EntryDraft is the caller-supplied payload for creating or updating an
// entry, prior to persistence.
type EntryDraft struct {
	Title   string
	Content string
	Date    time.Time
	// PrimaryMood is required; SecondaryMoods carries 0-2 optional moods.
	// Positions beyond the second are dropped.
	PrimaryMood    models.Mood
	SecondaryMoods []models.Mood
	Category       models.EntryCategory
	IsFavorite     bool
	ImagePath      *string
	TagIDs         []uint
}

// JournalService mediates all journal entry reads and mutations for a user
// and enforces the one-entry-per-day rule at write time.
type JournalService struct {
	entryRepo repository.EntryRepository
	tagRepo   repository.TagRepository
}

// NewJournalService returns a new JournalService.
func NewJournalService(entryRepo repository.EntryRepository, tagRepo repository.TagRepository) *JournalService {
	return &JournalService{entryRepo: entryRepo, tagRepo: tagRepo}
}

// GetByDate returns the user's entry for the given calendar day.
func (s *JournalService) GetByDate(ctx context.Context, userID uint, date time.Time) (*models.JournalEntry, error) {
	return s.entryRepo.GetByDate(ctx, userID, date)
}

// GetByID returns the user's entry with the given id. An entry owned by
// another user yields the same NotFound as a missing one.
func (s *JournalService) GetByID(ctx context.Context, userID, id uint) (*models.JournalEntry, error) {
	return s.entryRepo.GetByID(ctx, userID, id)
}

// List returns a page of the user's entries, newest date first.
// Pages are 1-based.
func (s *JournalService) List(ctx context.Context, userID uint, page, pageSize int) ([]models.JournalEntry, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.entryRepo.List(ctx, userID, pageSize, offset)
}

// Search returns the user's entries matching every provided filter,
// newest date first.
func (s *JournalService) Search(ctx context.Context, userID uint, filter repository.EntrySearchFilter) ([]models.JournalEntry, error) {
	if filter.Mood != nil && !filter.Mood.Valid() {
		return nil, models.NewValidationError("Unknown mood filter")
	}
	return s.entryRepo.Search(ctx, userID, filter)
}

// Create persists a new entry for the user. It fails with a DUPLICATE_DATE
// error when the user already has an entry on the draft's day.
func (s *JournalService) Create(ctx context.Context, userID uint, draft EntryDraft) (*models.JournalEntry, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	day := draftDay(draft)
	taken, err := s.entryRepo.ExistsOnDate(ctx, userID, day, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		observability.DuplicateDateRejections.Inc()
		return nil, models.NewDuplicateDateError("An entry already exists for this date")
	}

	tags, err := s.tagRepo.GetByIDs(ctx, userID, draft.TagIDs)
	if err != nil {
		return nil, err
	}

	category := draft.Category
	if category == "" {
		category = models.CategoryPersonal
	}

	entry := &models.JournalEntry{
		UserID:      userID,
		Title:       draft.Title,
		Content:     draft.Content,
		Date:        day,
		PrimaryMood: draft.PrimaryMood,
		Category:    category,
		IsFavorite:  draft.IsFavorite,
		ImagePath:   draft.ImagePath,
		Tags:        tags,
	}
	entry.SecondaryMood1, entry.SecondaryMood2 = splitSecondaryMoods(draft.SecondaryMoods)

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	observability.EntriesWritten.WithLabelValues("create").Inc()
	return entry, nil
}

// Update overwrites the user's entry with the draft. Moving the entry onto
// a day occupied by a different entry fails with a DUPLICATE_DATE error.
// The tag set is replaced wholesale.
func (s *JournalService) Update(ctx context.Context, userID, id uint, draft EntryDraft) (*models.JournalEntry, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	day := draftDay(draft)
	taken, err := s.entryRepo.ExistsOnDate(ctx, userID, day, entry.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		observability.DuplicateDateRejections.Inc()
		return nil, models.NewDuplicateDateError("Another entry already exists for this date")
	}

	tags, err := s.tagRepo.GetByIDs(ctx, userID, draft.TagIDs)
	if err != nil {
		return nil, err
	}

	entry.Title = draft.Title
	entry.Content = draft.Content
	entry.Date = day
	entry.PrimaryMood = draft.PrimaryMood
	entry.SecondaryMood1, entry.SecondaryMood2 = splitSecondaryMoods(draft.SecondaryMoods)
	entry.Category = draft.Category
	if entry.Category == "" {
		entry.Category = models.CategoryPersonal
	}
	entry.IsFavorite = draft.IsFavorite
	entry.ImagePath = draft.ImagePath

	if err := s.entryRepo.Update(ctx, entry, tags); err != nil {
		return nil, err
	}
	observability.EntriesWritten.WithLabelValues("update").Inc()
	return entry, nil
}

// Delete removes the user's entry and its tag associations.
func (s *JournalService) Delete(ctx context.Context, userID, id uint) error {
	entry, err := s.entryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.entryRepo.Delete(ctx, entry); err != nil {
		return err
	}
	observability.EntriesWritten.WithLabelValues("delete").Inc()
	return nil
}

// Streaks computes the user's current and longest entry streaks. The result
// is cached and invalidated on every entry mutation.
func (s *JournalService) Streaks(ctx context.Context, userID uint) (Streaks, error) {
	var streaks Streaks
	err := cache.Aside(ctx, cache.StreakKey(userID), &streaks, cache.StreakTTL, func() error {
		dates, err := s.entryRepo.DistinctDates(ctx, userID)
		if err != nil {
			return err
		}
		streaks = ComputeStreaks(dates, time.Now())
		return nil
	})
	return streaks, err
}

func validateDraft(draft EntryDraft) error {
	if draft.Content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(draft.Title) > 200 {
		return models.NewValidationError("Title must not exceed 200 characters")
	}
	if !draft.PrimaryMood.Valid() {
		return models.NewValidationError("Primary mood is required")
	}
	for _, m := range draft.SecondaryMoods {
		if !m.Valid() {
			return models.NewValidationError("Unknown secondary mood")
		}
	}
	if draft.Category != "" && !draft.Category.Valid() {
		return models.NewValidationError("Unknown category")
	}
	return nil
}

// draftDay normalizes the draft's date to a calendar day. A zero date means
// the entry is for today.
func draftDay(draft EntryDraft) time.Time {
	if draft.Date.IsZero() {
		return models.DayOf(time.Now())
	}
	return models.DayOf(draft.Date)
}

// splitSecondaryMoods maps list positions 0 and 1 to the two secondary mood
// slots. Extra moods are dropped.
func splitSecondaryMoods(moods []models.Mood) (first, second *models.Mood) {
	if len(moods) > 0 {
		m := moods[0]
		first = &m
	}
	if len(moods) > 1 {
		m := moods[1]
		second = &m
	}
	return first, second
}
