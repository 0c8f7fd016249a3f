package server

import (
	"strconv"
	"time"

	"dainiki/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a positive uint path parameter, writing a 400 response on
// failure. Returns ok=false when the response has already been written.
func parseID(c *fiber.Ctx, param string) (uint, bool) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param+" parameter"))
		return 0, false
	}
	return uint(id), true
}

// parseDateParam parses a YYYY-MM-DD path or query value.
func parseDateParam(c *fiber.Ctx, raw, name string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+name+", expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return t, true
}

// parsePagination reads page/page_size query params with sane defaults.
func parsePagination(c *fiber.Ctx) (page, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = c.QueryInt("page_size", 10)
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// currentUserID reads the authenticated user id stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// currentSessionID reads the session id (the token JTI) stored by AuthRequired.
func currentSessionID(c *fiber.Ctx) string {
	return c.Locals("sessionID").(string)
}

// respondErr maps a service error to its HTTP status and writes it.
func respondErr(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}
