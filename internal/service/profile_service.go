package service

import (
	"context"

	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"
	"interu/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Alias         string
	FirstName     string
	LastName      string
	Career        string
	Area          string
	Bio           string
	PhotoURL      string
	OfferedSkills []string
}

// ProfileService stores the academic profile that gates post creation.
type ProfileService struct {
	store *repository.Store
}

func NewProfileService(store *repository.Store) *ProfileService {
	return &ProfileService{store: store}
}

// Get returns the profile of userID.
func (s *ProfileService) Get(ctx context.Context, userID uint) (profile *models.Profile, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "profile", "get", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "get_profile", err) }()

	return s.store.Profiles.GetByUserID(ctx, userID)
}

// Create stores the first profile of userID. A second profile is a conflict.
func (s *ProfileService) Create(ctx context.Context, userID uint, in ProfileInput) (profile *models.Profile, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "profile", "create", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "create_profile", err) }()

	profile = &models.Profile{UserID: userID}
	if err := applyProfileInput(profile, in); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := tx.Profiles.GetByUserID(ctx, userID)
		if err != nil && models.ErrorCode(err) != models.CodeNotFound {
			return err
		}
		if existing != nil {
			return models.NewConflictError("Profile already exists")
		}
		return tx.Profiles.Create(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Update replaces the editable fields of userID's profile.
func (s *ProfileService) Update(ctx context.Context, userID uint, in ProfileInput) (profile *models.Profile, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "profile", "update", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "update_profile", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		p, err := tx.Profiles.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := applyProfileInput(p, in); err != nil {
			return err
		}
		if err := tx.Profiles.Update(ctx, p); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// HasOfferedSkills reports whether userID has a profile offering at least one
// skill, and returns that skill list.
func (s *ProfileService) HasOfferedSkills(ctx context.Context, userID uint) (bool, []string, error) {
	return profileOfferedSkills(ctx, s.store, userID)
}

func profileOfferedSkills(ctx context.Context, store *repository.Store, userID uint) (bool, []string, error) {
	p, err := store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return false, nil, nil
		}
		return false, nil, err
	}
	if !p.HasOfferedSkills() {
		return false, nil, nil
	}
	return true, append([]string(nil), p.OfferedSkills...), nil
}

func applyProfileInput(p *models.Profile, in ProfileInput) error {
	if err := validation.ValidateAlias(in.Alias); err != nil {
		return models.NewFieldError("alias", err.Error())
	}
	text := []struct {
		field string
		value string
		max   int
		dst   *string
	}{
		{"first_name", in.FirstName, 100, &p.FirstName},
		{"last_name", in.LastName, 100, &p.LastName},
		{"career", in.Career, 150, &p.Career},
		{"area", in.Area, 150, &p.Area},
		{"bio", in.Bio, 2000, &p.Bio},
	}
	for _, f := range text {
		v, err := validation.OptionalText(f.value, f.max)
		if err != nil {
			return models.NewFieldError(f.field, err.Error())
		}
		*f.dst = v
	}
	if err := validation.ValidatePhotoURL(in.PhotoURL); err != nil {
		return models.NewFieldError("photo_url", err.Error())
	}
	skills, err := validation.NormalizeSkills(in.OfferedSkills)
	if err != nil {
		return models.NewFieldError("offered_skills", err.Error())
	}
	p.Alias = in.Alias
	p.PhotoURL = in.PhotoURL
	p.OfferedSkills = skills
	return nil
}
