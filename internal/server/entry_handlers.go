package server

import (
	"strconv"
	"strings"

	"dainiki/internal/models"
	"dainiki/internal/repository"
	"dainiki/internal/service"

	"github.com/gofiber/fiber/v2"
)

// entryRequest is the request body shared by create and update.
type entryRequest struct {
	Title          string        `json:"title"`
	Content        string        `json:"content"`
	Date           string        `json:"date"`
	PrimaryMood    models.Mood   `json:"primary_mood"`
	SecondaryMoods []models.Mood `json:"secondary_moods"`
	Category       string        `json:"category"`
	IsFavorite     bool          `json:"is_favorite"`
	ImagePath      *string       `json:"image_path"`
	TagIDs         []uint        `json:"tag_ids"`
}

func (r *entryRequest) toDraft(c *fiber.Ctx) (service.EntryDraft, bool) {
	draft := service.EntryDraft{
		Title:          r.Title,
		Content:        r.Content,
		PrimaryMood:    r.PrimaryMood,
		SecondaryMoods: r.SecondaryMoods,
		Category:       models.EntryCategory(r.Category),
		IsFavorite:     r.IsFavorite,
		ImagePath:      r.ImagePath,
		TagIDs:         r.TagIDs,
	}
	// An absent date means "today"; the service fills it in.
	if r.Date != "" {
		date, ok := parseDateParam(c, r.Date, "date")
		if !ok {
			return draft, false
		}
		draft.Date = date
	}
	return draft, true
}

// ListEntries handles GET /api/entries
func (s *Server) ListEntries(c *fiber.Ctx) error {
	page, pageSize := parsePagination(c)
	entries, err := s.journalService.List(c.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"entries":   entries,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetEntry handles GET /api/entries/:id
func (s *Server) GetEntry(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	entry, err := s.journalService.GetByID(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

// GetEntryByDate handles GET /api/entries/date/:date
func (s *Server) GetEntryByDate(c *fiber.Ctx) error {
	date, ok := parseDateParam(c, c.Params("date"), "date")
	if !ok {
		return nil
	}
	entry, err := s.journalService.GetByDate(c.Context(), currentUserID(c), date)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

// SearchEntries handles GET /api/entries/search
func (s *Server) SearchEntries(c *fiber.Ctx) error {
	filter := repository.EntrySearchFilter{
		Text: strings.TrimSpace(c.Query("q")),
	}

	if raw := c.Query("start_date"); raw != "" {
		date, ok := parseDateParam(c, raw, "start_date")
		if !ok {
			return nil
		}
		filter.StartDate = &date
	}
	if raw := c.Query("end_date"); raw != "" {
		date, ok := parseDateParam(c, raw, "end_date")
		if !ok {
			return nil
		}
		filter.EndDate = &date
	}
	if raw := c.Query("mood"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid mood filter"))
		}
		mood := models.Mood(val)
		filter.Mood = &mood
	}
	if raw := c.Query("tag_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid tag_ids filter"))
			}
			filter.TagIDs = append(filter.TagIDs, uint(id))
		}
	}

	entries, err := s.journalService.Search(c.Context(), currentUserID(c), filter)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// GetStreaks handles GET /api/entries/streaks
func (s *Server) GetStreaks(c *fiber.Ctx) error {
	streaks, err := s.journalService.Streaks(c.Context(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(streaks)
}

// CreateEntry handles POST /api/entries
func (s *Server) CreateEntry(c *fiber.Ctx) error {
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	draft, ok := req.toDraft(c)
	if !ok {
		return nil
	}

	entry, err := s.journalService.Create(c.Context(), currentUserID(c), draft)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry})
}

// UpdateEntry handles PUT /api/entries/:id
func (s *Server) UpdateEntry(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req entryRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	draft, ok := req.toDraft(c)
	if !ok {
		return nil
	}

	entry, err := s.journalService.Update(c.Context(), currentUserID(c), id, draft)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"entry": entry})
}

// DeleteEntry handles DELETE /api/entries/:id
func (s *Server) DeleteEntry(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	if err := s.journalService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Entry deleted"})
}
