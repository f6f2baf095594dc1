// Package repository provides the GORM data access layer for the exchange platform.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository over one connection or transaction.
type Store struct {
	db            *gorm.DB
	Users         UserRepository
	Profiles      ProfileRepository
	Posts         PostRepository
	Chats         ChatRepository
	Ratings       RatingRepository
	Notifications NotificationRepository
	Reports       ReportRepository
}

// NewStore builds a Store on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		Posts:         NewPostRepository(db),
		Chats:         NewChatRepository(db),
		Ratings:       NewRatingRepository(db),
		Notifications: NewNotificationRepository(db),
		Reports:       NewReportRepository(db),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single database transaction.
// Any error returned by fn rolls the whole unit back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// openPage is clampPage for listings that return everything unless the
// caller asks for a page. A limit of -1 tells GORM to drop the LIMIT clause.
func openPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = -1
	} else if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
