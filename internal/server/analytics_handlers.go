package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetAnalyticsSummary handles GET /api/analytics/summary
func (s *Server) GetAnalyticsSummary(c *fiber.Ctx) error {
	summary, err := s.analyticsService.Summary(c.Context(), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(summary)
}
