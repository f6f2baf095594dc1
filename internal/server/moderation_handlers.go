package server

import (
	"interu/internal/models"
	"interu/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// FileReportRequest flags a post for moderator review.
type FileReportRequest struct {
	PostID uint   `json:"post_id"`
	Reason string `json:"reason"`
}

// ResolveReportRequest carries the moderator decision: approve, reject or hide.
type ResolveReportRequest struct {
	Action string `json:"action"`
}

// FileReport handles POST /api/reports
// @Summary Report a skill post
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FileReportRequest true "Report"
// @Success 201 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) FileReport(c *fiber.Ctx) error {
	var req FileReportRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("post_id", "post_id is required"))
	}
	report, err := s.moderationService.FileReport(c.UserContext(), req.PostID, currentUserID(c), req.Reason)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/reports
// @Summary List reports
// @Description Moderator capability required
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Page size (omit to list everything)"
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /reports [get]
func (s *Server) GetReports(c *fiber.Ctx) error {
	page := parsePagination(c, 0)
	filter := repository.ReportFilter{Limit: page.Limit, Offset: page.Offset}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseReportStatus(raw)
		if !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewFieldError("status", "status must be pending, approved or rejected"))
		}
		filter.Status = status
	}

	reports, err := s.moderationService.ListReports(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(reports)
}

// ResolveReport handles PATCH /api/reports/:id
// @Summary Resolve a report
// @Description Moderator capability required. "hide" withdraws the reported post.
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Param request body ResolveReportRequest true "Decision"
// @Success 200 {object} models.Report
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reports/{id} [patch]
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ResolveReportRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.moderationService.Resolve(c.UserContext(), reportID, currentUserID(c), req.Action)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(report)
}
