package service

import (
	"context"

	"dainiki/internal/models"
	"dainiki/internal/repository"
	"dainiki/internal/validation"
)

// TagService manages a user's tags.
type TagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	return s.tagRepo.List(ctx, userID)
}

func (s *TagService) Get(ctx context.Context, userID, tagID uint) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, userID, tagID)
}

// Create adds a tag. Names are unique per user; a missing color gets the
// default.
func (s *TagService) Create(ctx context.Context, userID uint, name, color string) (*models.Tag, error) {
	if err := validation.ValidateTagName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if color == "" {
		color = models.DefaultTagColor
	}
	if err := validation.ValidateTagColor(color); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if existing, err := s.tagRepo.GetByName(ctx, userID, name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("A tag with this name already exists")
	}
	tag := &models.Tag{UserID: userID, Name: name, Color: color}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, userID, tagID uint, name, color string) (*models.Tag, error) {
	if err := validation.ValidateTagName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if color == "" {
		color = models.DefaultTagColor
	}
	if err := validation.ValidateTagColor(color); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tag, err := s.tagRepo.GetByID(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.tagRepo.GetByName(ctx, userID, name); err != nil {
		return nil, err
	} else if existing != nil && existing.ID != tag.ID {
		return nil, models.NewValidationError("A tag with this name already exists")
	}
	tag.Name = name
	tag.Color = color
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes the tag and detaches it from every entry.
func (s *TagService) Delete(ctx context.Context, userID, tagID uint) error {
	tag, err := s.tagRepo.GetByID(ctx, userID, tagID)
	if err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, tag)
}
