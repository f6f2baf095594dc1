package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Evaluated feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{flags=map[string]bool}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{"flags": map[string]bool{}})
	}
	return c.JSON(fiber.Map{"flags": s.featureFlags.Snapshot(currentUserID(c))})
}
