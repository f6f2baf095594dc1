package service

import (
	"context"
	"fmt"

	"interu/internal/cache"
	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// NotificationRefs point at the entities that triggered a notification.
type NotificationRefs struct {
	ChatID   *uint
	PostID   *uint
	RatingID *uint
}

// NotificationService appends notifications and serves the per-identity inbox.
type NotificationService struct {
	store *repository.Store
}

func NewNotificationService(store *repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// Emit appends one notification per target inside the caller's transaction.
// The caller passes the returned records to Delivered once the transaction
// has committed.
func (s *NotificationService) Emit(ctx context.Context, tx *repository.Store, targets []uint, kind models.NotificationKind, body string, refs NotificationRefs) ([]*models.Notification, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
	notes := make([]*models.Notification, 0, len(targets))
	for _, target := range targets {
		if target == 0 {
			return nil, fmt.Errorf("notification target must be a valid identity")
		}
		notes = append(notes, &models.Notification{
			UserID:   target,
			Kind:     kind,
			Body:     body,
			ChatID:   refs.ChatID,
			PostID:   refs.PostID,
			RatingID: refs.RatingID,
		})
	}
	if err := tx.Notifications.CreateBatch(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Delivered runs the post-commit bookkeeping for emitted notifications.
func (s *NotificationService) Delivered(ctx context.Context, notes []*models.Notification) {
	targets := make([]uint, 0, len(notes))
	for _, n := range notes {
		observability.NotificationsEmitted.WithLabelValues(string(n.Kind)).Inc()
		targets = append(targets, n.UserID)
	}
	cache.InvalidateUnread(ctx, targets...)
}

// List returns the identity's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit, offset int) (out []models.Notification, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "notification", "list", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "list_notifications", err) }()

	return s.store.Notifications.ListForUser(ctx, userID, limit, offset)
}

// MarkRead flags one notification owned by userID as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) (note *models.Notification, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "notification", "mark_read",
		attribute.Int64("notification.id", int64(notificationID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { err = finish(span, "mark_notification_read", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Notifications.GetByID(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return models.NewForbiddenError("This notification belongs to another user")
		}
		if !n.IsRead {
			if err := tx.Notifications.MarkRead(ctx, n.ID); err != nil {
				return err
			}
			n.IsRead = true
		}
		note = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateUnread(ctx, userID)
	return note, nil
}

// MarkAllRead flags every unread notification of userID. Having nothing to
// mark is reported as an invalid request.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (count int64, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "notification", "mark_all_read", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "mark_all_notifications_read", err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		n, err := tx.Notifications.MarkAllRead(ctx, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return models.NewValidationError("No unread notifications to mark")
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	cache.InvalidateUnread(ctx, userID)
	return count, nil
}

// UnreadCount returns the number of unread notifications, served from Redis
// when a fresh counter is cached.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (count int64, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "notification", "unread_count", attribute.Int64("user.id", int64(userID)))
	defer func() { err = finish(span, "unread_count", err) }()

	key := cache.UnreadKey(userID)
	if n, ok := cache.CachedCount(ctx, key); ok {
		return n, nil
	}
	n, err := s.store.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	cache.StoreCount(ctx, key, n, cache.UnreadTTL)
	return n, nil
}
