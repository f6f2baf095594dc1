package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"interu/internal/middleware"
	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"
	"interu/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxMessageBody = 4000

// ChatService runs the exchange chat workflow.
type ChatService struct {
	store         *repository.Store
	notifications *NotificationService
	now           func() time.Time
}

// NewChatService returns a new ChatService.
func NewChatService(store *repository.Store, notifications *NotificationService) *ChatService {
	return &ChatService{
		store:         store,
		notifications: notifications,
		now:           time.Now,
	}
}

// OpenChat starts a new exchange chat on a visible post between its author and
// requesterID. Every call creates a fresh chat; only the participant rows of a
// single chat are unique.
func (s *ChatService) OpenChat(ctx context.Context, postID, requesterID uint) (chat *models.ExchangeChat, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "open",
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("user.id", int64(requesterID)),
	)
	defer func() { err = finish(span, "open_chat", err) }()

	var notes []*models.Notification
	var chatID uint
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		post, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.OwnerID == requesterID {
			return models.NewFieldError("post_id", "You cannot open a chat on your own post")
		}
		if !post.Visible() {
			return models.NewForbiddenError("This post is not available")
		}

		c := &models.ExchangeChat{PostID: post.ID}
		if err := tx.Chats.Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Chats.AddParticipant(ctx, c.ID, post.OwnerID, models.RoleAuthor); err != nil {
			return err
		}
		if err := tx.Chats.AddParticipant(ctx, c.ID, requesterID, models.RoleRespondent); err != nil {
			return err
		}

		notes, err = s.notifications.Emit(ctx, tx, []uint{post.OwnerID}, models.NotificationNewChat,
			fmt.Sprintf("New chat about your post %d", post.ID),
			NotificationRefs{ChatID: uintPtr(c.ID), PostID: uintPtr(post.ID)},
		)
		chatID = c.ID
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.ChatsOpened.Inc()
	s.notifications.Delivered(ctx, notes)
	return s.store.Chats.GetWithMessages(ctx, chatID)
}

// GetChat returns the chat with participants and messages to a participant.
func (s *ChatService) GetChat(ctx context.Context, chatID, requesterID uint) (chat *models.ExchangeChat, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "get",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(requesterID)),
	)
	defer func() { err = finish(span, "get_chat", err) }()

	c, err := s.store.Chats.GetWithMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Participant(requesterID); !ok {
		return nil, models.NewForbiddenError("You are not a participant of this chat")
	}
	return c, nil
}

// ListChats returns the chats userID takes part in, newest first.
func (s *ChatService) ListChats(ctx context.Context, userID uint) (chats []models.ExchangeChat, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "list", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "list_chats", err) }()

	return s.store.Chats.ListForUser(ctx, userID)
}

// PostMessage appends a message from senderID and notifies the other participants.
func (s *ChatService) PostMessage(ctx context.Context, chatID, senderID uint, body string) (msg *models.ChatMessage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "post_message",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(senderID)),
	)
	defer func() { err = finish(span, "post_message", err) }()

	text, err := validation.RequireText(body, maxMessageBody)
	if err != nil {
		return nil, models.NewFieldError("body", "message body "+err.Error())
	}

	var notes []*models.Notification
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Chats.GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		if _, ok := c.Participant(senderID); !ok {
			return models.NewForbiddenError("You are not a participant of this chat")
		}

		m := &models.ChatMessage{ChatID: c.ID, SenderID: senderID, Body: text}
		if err := tx.Chats.CreateMessage(ctx, m); err != nil {
			return err
		}

		notes, err = s.notifications.Emit(ctx, tx, c.OtherParticipantIDs(senderID), models.NotificationNewMessage,
			fmt.Sprintf("New message in chat %d", c.ID),
			NotificationRefs{ChatID: uintPtr(c.ID), PostID: uintPtr(c.PostID)},
		)
		msg = m
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.MessagesPosted.Inc()
	s.notifications.Delivered(ctx, notes)
	return msg, nil
}

// CompleteExchange marks the chat complete. Only the author participant may
// do so; completing an already completed chat is a no-op.
func (s *ChatService) CompleteExchange(ctx context.Context, chatID, requesterID uint) (chat *models.ExchangeChat, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "complete",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(requesterID)),
	)
	defer func() { err = finish(span, "complete_exchange", err) }()

	var notes []*models.Notification
	var flipped bool
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Chats.GetByID(ctx, chatID)
		if err != nil {
			return err
		}
		p, ok := c.Participant(requesterID)
		if !ok || p.Role != models.RoleAuthor {
			return models.NewForbiddenError("Only the post author can complete this exchange")
		}
		if c.Completed {
			return nil
		}

		flipped, err = tx.Chats.MarkCompleted(ctx, c.ID, s.now())
		if err != nil || !flipped {
			return err
		}

		notes, err = s.notifications.Emit(ctx, tx, c.OtherParticipantIDs(requesterID), models.NotificationExchangeCompleted,
			fmt.Sprintf("The author marked chat %d as completed.", c.ID),
			NotificationRefs{ChatID: uintPtr(c.ID), PostID: uintPtr(c.PostID)},
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	if flipped {
		observability.ExchangesCompleted.Inc()
		s.notifications.Delivered(ctx, notes)
		middleware.Logger.InfoContext(ctx, "Exchange completed", slog.Uint64("chat_id", uint64(chatID)))
	}
	return s.store.Chats.GetWithMessages(ctx, chatID)
}

// MarkChatRead flags the messages other participants sent as read for userID.
func (s *ChatService) MarkChatRead(ctx context.Context, chatID, userID uint) (count int64, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "chat", "mark_read",
		attribute.Int64("chat.id", int64(chatID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { err = finish(span, "mark_chat_read", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Chats.GetParticipant(ctx, chatID, userID)
		if err != nil {
			return err
		}
		if p == nil {
			if _, err := tx.Chats.GetByID(ctx, chatID); err != nil {
				return err
			}
			return models.NewForbiddenError("You are not a participant of this chat")
		}
		count, err = tx.Chats.MarkMessagesRead(ctx, chatID, userID)
		return err
	})
	return count, err
}
