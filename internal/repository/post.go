package repository

import (
	"context"
	"errors"
	"strings"

	"interu/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows the public feed.
type PostFilter struct {
	Skill  string
	Query  string
	Limit  int
	Offset int
}

// PostRepository defines the interface for skill post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.SkillPost) error
	GetByID(ctx context.Context, id uint) (*models.SkillPost, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.SkillPost, error)
	ListVisible(ctx context.Context, filter PostFilter) ([]models.SkillPost, error)
	Update(ctx context.Context, post *models.SkillPost) error
	Delete(ctx context.Context, id uint) error
	SetVisibility(ctx context.Context, id uint, visibility models.PostVisibility) error
	VisibilityOf(ctx context.Context, id uint) (models.PostVisibility, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.SkillPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID returns the post regardless of visibility. Soft-deleted posts are missing.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.SkillPost, error) {
	var post models.SkillPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.SkillPost, error) {
	var posts []models.SkillPost
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListVisible(ctx context.Context, filter PostFilter) ([]models.SkillPost, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	q := r.db.WithContext(ctx).Where("visibility = ?", models.PostActive)
	if skill := strings.ToLower(strings.TrimSpace(filter.Skill)); skill != "" {
		// Skills are stored as JSON arrays of normalized strings.
		pattern := `%"` + escapeLike(skill) + `"%`
		q = q.Where("(LOWER(offered_skills) LIKE ? ESCAPE '\\' OR LOWER(sought_skills) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if query := strings.ToLower(strings.TrimSpace(filter.Query)); query != "" {
		q = q.Where("LOWER(title) LIKE ? ESCAPE '\\'", "%"+escapeLike(query)+"%")
	}

	var posts []models.SkillPost
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.SkillPost) error {
	return r.db.WithContext(ctx).
		Model(post).
		Select("title", "description", "sought_skills", "visibility").
		Updates(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SkillPost{}, id).Error
}

func (r *postRepository) SetVisibility(ctx context.Context, id uint, visibility models.PostVisibility) error {
	res := r.db.WithContext(ctx).Model(&models.SkillPost{}).Where("id = ?", id).Update("visibility", visibility)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// VisibilityOf reads only the visibility column. Soft-deleted posts are missing.
func (r *postRepository) VisibilityOf(ctx context.Context, id uint) (models.PostVisibility, error) {
	var states []string
	err := r.db.WithContext(ctx).Model(&models.SkillPost{}).Where("id = ?", id).Pluck("visibility", &states).Error
	if err != nil {
		return "", err
	}
	if len(states) == 0 {
		return "", models.NewNotFoundError("Post", id)
	}
	return models.PostVisibility(states[0]), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
