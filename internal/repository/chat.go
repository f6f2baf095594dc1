package repository

import (
	"context"
	"errors"
	"time"

	"interu/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines the interface for exchange chat data operations
type ChatRepository interface {
	Create(ctx context.Context, chat *models.ExchangeChat) error
	GetByID(ctx context.Context, id uint) (*models.ExchangeChat, error)
	GetWithMessages(ctx context.Context, id uint) (*models.ExchangeChat, error)
	ListForUser(ctx context.Context, userID uint) ([]models.ExchangeChat, error)
	AddParticipant(ctx context.Context, chatID, userID uint, role models.ParticipantRole) error
	GetParticipant(ctx context.Context, chatID, userID uint) (*models.ChatParticipant, error)
	MarkCompleted(ctx context.Context, chatID uint, at time.Time) (bool, error)
	MarkRated(ctx context.Context, chatID, userID uint) error
	CreateMessage(ctx context.Context, msg *models.ChatMessage) error
	MarkMessagesRead(ctx context.Context, chatID, readerID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.ExchangeChat) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(chat).Error
}

// GetByID loads the chat with its participants.
func (r *chatRepository) GetByID(ctx context.Context, id uint) (*models.ExchangeChat, error) {
	var chat models.ExchangeChat
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&chat, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", id)
		}
		return nil, err
	}
	return &chat, nil
}

// GetWithMessages loads the chat, its participants, its post and its messages
// in creation order.
func (r *chatRepository) GetWithMessages(ctx context.Context, id uint) (*models.ExchangeChat, error) {
	var chat models.ExchangeChat
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Post", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		First(&chat, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", id)
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]models.ExchangeChat, error) {
	var chats []models.ExchangeChat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp ON cp.chat_id = exchange_chats.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Post", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Order("exchange_chats.created_at DESC, exchange_chats.id DESC").
		Find(&chats).Error
	return chats, err
}

// AddParticipant is idempotent on (chat_id, user_id).
func (r *chatRepository) AddParticipant(ctx context.Context, chatID, userID uint, role models.ParticipantRole) error {
	participant := models.ChatParticipant{
		ChatID: chatID,
		UserID: userID,
		Role:   role,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&participant).Error
}

func (r *chatRepository) GetParticipant(ctx context.Context, chatID, userID uint) (*models.ChatParticipant, error) {
	var p models.ChatParticipant
	err := r.db.WithContext(ctx).Where("chat_id = ? AND user_id = ?", chatID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MarkCompleted flips completed to true. It reports false when the chat was
// already complete.
func (r *chatRepository) MarkCompleted(ctx context.Context, chatID uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ExchangeChat{}).
		Where("id = ? AND completed = ?", chatID, false).
		Updates(map[string]interface{}{"completed": true, "completed_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *chatRepository) MarkRated(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("has_rated", true).Error
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// MarkMessagesRead flags every message in the chat not sent by readerID.
func (r *chatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
