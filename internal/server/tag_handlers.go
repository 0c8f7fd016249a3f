package server

import (
	"dainiki/internal/models"

	"github.com/gofiber/fiber/v2"
)

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListTags handles GET /api/tags
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.tagService.List(c.Context(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// GetTag handles GET /api/tags/:id
func (s *Server) GetTag(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	tag, err := s.tagService.Get(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"tag": tag})
}

// CreateTag handles POST /api/tags
func (s *Server) CreateTag(c *fiber.Ctx) error {
	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	tag, err := s.tagService.Create(c.Context(), currentUserID(c), req.Name, req.Color)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tag": tag})
}

// UpdateTag handles PUT /api/tags/:id
func (s *Server) UpdateTag(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	var req tagRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	tag, err := s.tagService.Update(c.Context(), currentUserID(c), id, req.Name, req.Color)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"tag": tag})
}

// DeleteTag handles DELETE /api/tags/:id. Entries tagged with it keep their
// other tags.
func (s *Server) DeleteTag(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return nil
	}
	if err := s.tagService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tag deleted"})
}
