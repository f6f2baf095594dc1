package repository

import (
	"context"
	"errors"
	"strings"

	"interu/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for identities.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	IsModerator(ctx context.Context, id uint) (bool, error)
	SetModerator(ctx context.Context, id uint, moderator bool) error
	ListModerators(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) IsModerator(ctx context.Context, id uint) (bool, error) {
	var flags []bool
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("is_moderator", &flags).Error; err != nil {
		return false, err
	}
	return len(flags) == 1 && flags[0], nil
}

func (r *userRepository) SetModerator(ctx context.Context, id uint, moderator bool) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_moderator", moderator)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) ListModerators(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("is_moderator = ?", true).Order("id ASC").Find(&users).Error
	return users, err
}
