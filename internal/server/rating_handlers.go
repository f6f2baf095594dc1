package server

import (
	"interu/internal/models"
	"interu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRatingRequest scores a chat from the caller's side.
type SubmitRatingRequest struct {
	ChatID  uint   `json:"chat_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// SubmitRating handles POST /api/ratings
// @Summary Rate a chat
// @Description One rating per participant and chat; score from 1 to 5
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitRatingRequest true "Rating"
// @Success 201 {object} models.Rating
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /ratings [post]
func (s *Server) SubmitRating(c *fiber.Ctx) error {
	var req SubmitRatingRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.ChatID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("chat_id", "chat_id is required"))
	}
	rating, err := s.ratingService.SubmitRating(c.UserContext(), service.SubmitRatingInput{
		ChatID:  req.ChatID,
		RaterID: currentUserID(c),
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rating)
}
