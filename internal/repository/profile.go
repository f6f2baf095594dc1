package repository

import (
	"context"
	"errors"

	"interu/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository persists the academic profile of an identity.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile for user", userID)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
