package repository

import (
	"context"

	"interu/internal/models"

	"gorm.io/gorm"
)

// RatingRepository persists chat ratings. (chat_id, rater_id) is unique in
// the schema, so Create surfaces a unique violation for a second rating.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListByChat(ctx context.Context, chatID uint) ([]models.Rating, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

func (r *ratingRepository) ListByChat(ctx context.Context, chatID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("id ASC").Find(&ratings).Error
	return ratings, err
}
