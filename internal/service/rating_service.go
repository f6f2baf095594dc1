package service

import (
	"context"
	"fmt"
	"strconv"

	"interu/internal/database"
	"interu/internal/featureflags"
	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"
	"interu/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxRatingComment = 1000

// SubmitRatingInput is the input for rating a chat.
type SubmitRatingInput struct {
	ChatID  uint
	RaterID uint
	Score   int
	Comment string
}

// RatingService records one rating per participant and chat.
type RatingService struct {
	store         *repository.Store
	notifications *NotificationService
	flags         *featureflags.Manager
}

func NewRatingService(store *repository.Store, notifications *NotificationService, flags *featureflags.Manager) *RatingService {
	return &RatingService{store: store, notifications: notifications, flags: flags}
}

// SubmitRating stores the rater's score for a chat and notifies the other
// participants. The (chat, rater) unique key closes the race between two
// concurrent submissions.
func (s *RatingService) SubmitRating(ctx context.Context, in SubmitRatingInput) (rating *models.Rating, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "rating", "submit",
		attribute.Int64("chat.id", int64(in.ChatID)),
		attribute.Int64("user.id", int64(in.RaterID)),
		attribute.Int("rating.score", in.Score),
	)
	defer func() { err = finish(span, "submit_rating", err) }()

	if in.Score < models.MinRatingScore || in.Score > models.MaxRatingScore {
		return nil, models.NewFieldError("score", fmt.Sprintf("score must be between %d and %d", models.MinRatingScore, models.MaxRatingScore))
	}
	comment, err := validation.OptionalText(in.Comment, maxRatingComment)
	if err != nil {
		return nil, models.NewFieldError("comment", "comment "+err.Error())
	}

	var notes []*models.Notification
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Chats.GetByID(ctx, in.ChatID)
		if err != nil {
			return err
		}
		p, ok := c.Participant(in.RaterID)
		if !ok {
			return models.NewForbiddenError("You are not a participant of this chat")
		}
		if s.flags.Enabled(featureflags.RatingRequiresCompletion, in.RaterID) && !c.Completed {
			return models.NewFieldError("chat_id", "The exchange must be completed before rating")
		}
		if p.HasRated {
			return models.NewConflictError("You have already rated this chat")
		}

		r := &models.Rating{ChatID: c.ID, RaterID: in.RaterID, Score: in.Score, Comment: comment}
		if err := tx.Ratings.Create(ctx, r); err != nil {
			if database.IsUniqueViolation(err) {
				return models.NewConflictError("You have already rated this chat")
			}
			return err
		}
		if err := tx.Chats.MarkRated(ctx, c.ID, in.RaterID); err != nil {
			return err
		}

		notes, err = s.notifications.Emit(ctx, tx, c.OtherParticipantIDs(in.RaterID), models.NotificationChatRated,
			fmt.Sprintf("User %d rated chat %d.", in.RaterID, c.ID),
			NotificationRefs{ChatID: uintPtr(c.ID), PostID: uintPtr(c.PostID), RatingID: uintPtr(r.ID)},
		)
		rating = r
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.RatingsSubmitted.WithLabelValues(strconv.Itoa(rating.Score)).Inc()
	s.notifications.Delivered(ctx, notes)
	return rating, nil
}
