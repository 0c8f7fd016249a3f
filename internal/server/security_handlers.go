package server

import (
	"dainiki/internal/models"

	"github.com/gofiber/fiber/v2"
)

type pinRequest struct {
	Pin string `json:"pin"`
}

// GetSecurityStatus handles GET /api/security/status
func (s *Server) GetSecurityStatus(c *fiber.Ctx) error {
	userID := currentUserID(c)
	hasPin, err := s.securityService.HasPin(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}
	locked, err := s.securityService.IsLocked(c.Context(), userID, currentSessionID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{
		"has_pin": hasPin,
		"locked":  locked,
	})
}

// SetPin handles POST /api/security/pin
func (s *Server) SetPin(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.securityService.SetPin(c.Context(), currentUserID(c), req.Pin); err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "PIN set"})
}

// VerifyPin handles POST /api/security/verify. It checks the PIN without
// changing lock state, for client-side confirmation prompts.
func (s *Server) VerifyPin(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.securityService.VerifyPin(c.Context(), currentUserID(c), req.Pin); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "PIN verified"})
}

// ChangePin handles PUT /api/security/pin
func (s *Server) ChangePin(c *fiber.Ctx) error {
	var req struct {
		CurrentPin string `json:"current_pin"`
		NewPin     string `json:"new_pin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.securityService.ChangePin(c.Context(), currentUserID(c), req.CurrentPin, req.NewPin); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "PIN changed"})
}

// RemovePin handles DELETE /api/security/pin
func (s *Server) RemovePin(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.securityService.RemovePin(c.Context(), currentUserID(c), req.Pin); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "PIN removed"})
}

// UnlockJournal handles POST /api/security/unlock
func (s *Server) UnlockJournal(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := s.securityService.Unlock(c.Context(), currentUserID(c), currentSessionID(c), req.Pin); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Journal unlocked"})
}

// LockJournal handles POST /api/security/lock
func (s *Server) LockJournal(c *fiber.Ctx) error {
	if err := s.securityService.Lock(c.Context(), currentUserID(c), currentSessionID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Journal locked"})
}
