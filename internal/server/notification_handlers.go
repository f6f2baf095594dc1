package server

import "github.com/gofiber/fiber/v2"

// GetNotifications handles GET /api/notifications
// @Summary List own notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (omit to list everything)"
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, 0)
	notes, err := s.notificationService.List(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(notes)
}

// GetUnreadCount handles GET /api/notifications/unread-count
// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{unread=int}
// @Router /notifications/unread-count [get]
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// MarkNotificationRead handles PATCH /api/notifications/:id
// @Summary Mark one notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} models.Notification
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id} [patch]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	noteID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	note, err := s.notificationService.MarkRead(c.UserContext(), noteID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(note)
}

// MarkAllNotificationsRead handles POST /api/notifications/mark-all
// @Summary Mark every unread notification as read
// @Description Fails with 400 when nothing is unread
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{marked=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /notifications/mark-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"marked": n})
}
