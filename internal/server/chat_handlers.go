package server

import (
	"interu/internal/models"

	"github.com/gofiber/fiber/v2"
)

// OpenChatRequest names the post a respondent wants to negotiate on.
type OpenChatRequest struct {
	PostID uint `json:"post_id"`
}

// SendMessageRequest appends a message to a chat.
type SendMessageRequest struct {
	ChatID uint   `json:"chat_id"`
	Body   string `json:"body"`
}

// OpenChat handles POST /api/chats
// @Summary Open an exchange chat on a post
// @Description Creates a new chat between the post author and the caller
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OpenChatRequest true "Post reference"
// @Success 201 {object} models.ExchangeChat
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chats [post]
func (s *Server) OpenChat(c *fiber.Ctx) error {
	var req OpenChatRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("post_id", "post_id is required"))
	}
	chat, err := s.chatService.OpenChat(c.UserContext(), req.PostID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// GetChats handles GET /api/chats
// @Summary List own chats
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ExchangeChat
// @Router /chats [get]
func (s *Server) GetChats(c *fiber.Ctx) error {
	chats, err := s.chatService.ListChats(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(chats)
}

// GetChat handles GET /api/chats/:id
// @Summary Get a chat with its messages
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {object} models.ExchangeChat
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chats/{id} [get]
func (s *Server) GetChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	chat, err := s.chatService.GetChat(c.UserContext(), chatID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(chat)
}

// CompleteChat handles PATCH /api/chats/:id/complete
// @Summary Mark an exchange as completed
// @Description Author only. Completing an already completed chat is a no-op.
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {object} models.ExchangeChat
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chats/{id}/complete [patch]
func (s *Server) CompleteChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	chat, err := s.chatService.CompleteExchange(c.UserContext(), chatID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(chat)
}

// MarkChatRead handles PATCH /api/chats/:id/read
// @Summary Mark the other participants' messages as read
// @Tags chats
// @Produce json
// @Security BearerAuth
// @Param id path int true "Chat ID"
// @Success 200 {object} object{marked=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chats/{id}/read [patch]
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.chatService.MarkChatRead(c.UserContext(), chatID, currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"marked": n})
}

// SendMessage handles POST /api/messages
// @Summary Post a chat message
// @Tags chats
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} models.ChatMessage
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages [post]
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}
	if req.ChatID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("chat_id", "chat_id is required"))
	}
	msg, err := s.chatService.PostMessage(c.UserContext(), req.ChatID, currentUserID(c), req.Body)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
