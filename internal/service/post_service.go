package service

import (
	"context"

	"interu/internal/cache"
	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"
	"interu/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxPostTitle       = 200
	maxPostDescription = 5000
)

// CreatePostInput is the input for publishing a skill post.
type CreatePostInput struct {
	OwnerID      uint
	Title        string
	Description  string
	SoughtSkills []string
}

// UpdatePostInput carries the owner-editable fields. Nil leaves a field as is.
// Offered skills are fixed at creation.
type UpdatePostInput struct {
	PostID       uint
	OwnerID      uint
	Title        *string
	Description  *string
	SoughtSkills *[]string
	Visibility   *string
}

// PostService owns the skill post lifecycle.
type PostService struct {
	store *repository.Store
}

func NewPostService(store *repository.Store) *PostService {
	return &PostService{store: store}
}

// Create publishes a post. The owner must have a profile offering at least one
// skill; those skills are copied onto the post.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (post *models.SkillPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "create", attribute.Int64("user.id", int64(in.OwnerID)))
	defer func() { err = finish(span, "create_post", err) }()

	title, err := validation.RequireText(in.Title, maxPostTitle)
	if err != nil {
		return nil, models.NewFieldError("title", "title "+err.Error())
	}
	description, err := validation.RequireText(in.Description, maxPostDescription)
	if err != nil {
		return nil, models.NewFieldError("description", "description "+err.Error())
	}
	sought, err := validation.NormalizeSkills(in.SoughtSkills)
	if err != nil {
		return nil, models.NewFieldError("sought_skills", err.Error())
	}
	if len(sought) == 0 {
		return nil, models.NewFieldError("sought_skills", "at least one sought skill is required")
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, offered, err := profileOfferedSkills(ctx, tx, in.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return models.NewFieldError("offered_skills", "Complete your profile with at least one offered skill before posting")
		}
		post = &models.SkillPost{
			OwnerID:       in.OwnerID,
			Title:         title,
			Description:   description,
			OfferedSkills: offered,
			SoughtSkills:  sought,
			Visibility:    models.PostActive,
		}
		return tx.Posts.Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListMine returns every post of ownerID, withdrawn ones included.
func (s *PostService) ListMine(ctx context.Context, ownerID uint) (posts []models.SkillPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "list_mine", attribute.Int64("user.id", int64(ownerID)))
	defer func() { err = finish(span, "list_my_posts", err) }()

	return s.store.Posts.ListByOwner(ctx, ownerID)
}

// ListVisible returns the public feed, newest first.
func (s *PostService) ListVisible(ctx context.Context, filter repository.PostFilter) (posts []models.SkillPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "list_visible")
	defer func() { err = finish(span, "list_posts", err) }()

	return s.store.Posts.ListVisible(ctx, filter)
}

// GetVisible returns a post to requesterID. Withdrawn posts are reported as
// missing to everyone except their owner.
func (s *PostService) GetVisible(ctx context.Context, postID, requesterID uint) (post *models.SkillPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "get", attribute.Int64("post.id", int64(postID)))
	defer func() { err = finish(span, "get_post", err) }()

	p, err := s.cachedPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.Visible() && p.OwnerID != requesterID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return p, nil
}

// PostVisible reports whether postID exists and is shown publicly.
func (s *PostService) PostVisible(ctx context.Context, postID uint) (bool, error) {
	p, err := s.cachedPost(ctx, postID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return p.Visible(), nil
}

// cachedPost serves the post body from the cache but always reads visibility
// from the store. A reader that filled the cache just before a hide commits
// would otherwise keep the withdrawn post public until PostTTL.
func (s *PostService) cachedPost(ctx context.Context, postID uint) (*models.SkillPost, error) {
	var post models.SkillPost
	err := cache.Aside(ctx, cache.PostKey(postID), &post, cache.PostTTL, func() error {
		p, err := s.store.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		post = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	visibility, err := s.store.Posts.VisibilityOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Visibility = visibility
	return &post, nil
}

// Update edits a post. Only the owner may change it.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (post *models.SkillPost, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "update", attribute.Int64("post.id", int64(in.PostID)))
	defer func() { err = finish(span, "update_post", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Posts.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if p.OwnerID != in.OwnerID {
			return models.NewForbiddenError("Only the post owner can edit this post")
		}
		if err := applyPostUpdate(p, in); err != nil {
			return err
		}
		if err := tx.Posts.Update(ctx, p); err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, in.PostID)
	return post, nil
}

func applyPostUpdate(p *models.SkillPost, in UpdatePostInput) error {
	if in.Title != nil {
		v, err := validation.RequireText(*in.Title, maxPostTitle)
		if err != nil {
			return models.NewFieldError("title", "title "+err.Error())
		}
		p.Title = v
	}
	if in.Description != nil {
		v, err := validation.RequireText(*in.Description, maxPostDescription)
		if err != nil {
			return models.NewFieldError("description", "description "+err.Error())
		}
		p.Description = v
	}
	if in.SoughtSkills != nil {
		sought, err := validation.NormalizeSkills(*in.SoughtSkills)
		if err != nil {
			return models.NewFieldError("sought_skills", err.Error())
		}
		if len(sought) == 0 {
			return models.NewFieldError("sought_skills", "at least one sought skill is required")
		}
		p.SoughtSkills = sought
	}
	if in.Visibility != nil {
		vis, ok := models.ParsePostVisibility(*in.Visibility)
		if !ok {
			return models.NewFieldError("visibility", "visibility must be 'active' or 'withdrawn'")
		}
		p.Visibility = vis
	}
	return nil
}

// Delete removes a post. Only the owner may delete it.
func (s *PostService) Delete(ctx context.Context, postID, ownerID uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "post", "delete", attribute.Int64("post.id", int64(postID)))
	defer func() { err = finish(span, "delete_post", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Posts.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if p.OwnerID != ownerID {
			return models.NewForbiddenError("Only the post owner can delete this post")
		}
		return tx.Posts.Delete(ctx, postID)
	})
	if err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
