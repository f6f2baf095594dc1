package server

import (
	"interu/internal/repository"
	"interu/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the payload for publishing a skill post.
type CreatePostRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	SoughtSkills []string `json:"sought_skills"`
}

// UpdatePostRequest carries the owner-editable fields. Omitted fields are kept.
type UpdatePostRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	SoughtSkills *[]string `json:"sought_skills"`
	Visibility   *string   `json:"visibility"`
}

// GetPosts handles GET /api/posts
// @Summary Browse the public feed
// @Description Active skill posts, newest first
// @Tags posts
// @Produce json
// @Param skill query string false "Offered or sought skill"
// @Param q query string false "Title search"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.SkillPost
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	posts, err := s.postService.ListVisible(c.UserContext(), repository.PostFilter{
		Skill:  c.Query("skill"),
		Query:  c.Query("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetMyPosts handles GET /api/posts/mine
// @Summary List own posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.SkillPost
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/mine [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListMine(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a skill post
// @Description Withdrawn posts are only visible to their owner
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.SkillPost
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetVisible(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Publish a skill post
// @Description Requires a profile with at least one offered skill
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post"
// @Success 201 {object} models.SkillPost
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		OwnerID:      currentUserID(c),
		Title:        req.Title,
		Description:  req.Description,
		SoughtSkills: req.SoughtSkills,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Edit a skill post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Changes"
// @Success 200 {object} models.SkillPost
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req UpdatePostRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		PostID:       postID,
		OwnerID:      currentUserID(c),
		Title:        req.Title,
		Description:  req.Description,
		SoughtSkills: req.SoughtSkills,
		Visibility:   req.Visibility,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a skill post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), postID, currentUserID(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
