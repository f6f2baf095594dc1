package repository

import (
	"context"
	"errors"

	"interu/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository stores per-identity notifications.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, err
	}
	return &n, nil
}

// ListForUser returns newest first. A non-positive limit lists every row.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	limit, offset = openPage(limit, offset)
	var out []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
