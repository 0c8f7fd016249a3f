package server

import (
	"time"

	"dainiki/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ExportEntries handles GET /api/export/:format?start_date=...&end_date=...
// Format is one of html, markdown, csv. The range defaults to the last year.
func (s *Server) ExportEntries(c *fiber.Ctx) error {
	format := service.ExportFormat(c.Params("format"))

	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	if raw := c.Query("start_date"); raw != "" {
		parsed, ok := parseDateParam(c, raw, "start_date")
		if !ok {
			return nil
		}
		start = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, ok := parseDateParam(c, raw, "end_date")
		if !ok {
			return nil
		}
		end = parsed
	}

	export, err := s.exportService.Render(c.Context(), currentUserID(c), format, start, end)
	if err != nil {
		return respondErr(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Send(export.Data)
}
