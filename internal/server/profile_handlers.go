package server

import (
	"interu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileRequest is the editable profile payload.
type ProfileRequest struct {
	Alias         string   `json:"alias"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Career        string   `json:"career"`
	Area          string   `json:"area"`
	Bio           string   `json:"bio"`
	PhotoURL      string   `json:"photo_url"`
	OfferedSkills []string `json:"offered_skills"`
}

func (r ProfileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		Alias:         r.Alias,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Career:        r.Career,
		Area:          r.Area,
		Bio:           r.Bio,
		PhotoURL:      r.PhotoURL,
		OfferedSkills: r.OfferedSkills,
	}
}

// GetMyProfile handles GET /api/profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// CreateMyProfile handles POST /api/profile
// @Summary Create own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile"
// @Success 201 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /profile [post]
func (s *Server) CreateMyProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.profileService.Create(c.UserContext(), currentUserID(c), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// UpdateMyProfile handles PUT /api/profile
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProfileRequest true "Profile"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req ProfileRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.profileService.Update(c.UserContext(), currentUserID(c), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}
