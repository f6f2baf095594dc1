// Package service implements the exchange workflow: post registry glue, chats,
// ratings, notification fan-out and moderation. Every mutating operation runs
// in one database transaction together with the notifications it emits.
package service

import (
	"context"

	"interu/internal/database"
	"interu/internal/models"
	"interu/internal/observability"
)

// ModeratorCheck reports whether an identity holds the moderator capability.
type ModeratorCheck func(ctx context.Context, userID uint) (bool, error)

// toAppError maps storage errors onto the client-facing taxonomy.
func toAppError(err error) *models.AppError {
	if err == nil {
		return nil
	}
	if code := models.ErrorCode(err); code != "" {
		return models.AsAppError(err)
	}
	if database.IsUniqueViolation(err) {
		return &models.AppError{Code: models.CodeConflict, Message: "Resource already exists", Err: err}
	}
	if database.IsNotFound(err) {
		return &models.AppError{Code: models.CodeNotFound, Message: "Resource not found", Err: err}
	}
	return models.NewInternalError(err)
}

// finish closes span and returns err translated into an *AppError. Callers
// use it from a deferred closure over their named error result.
func finish(span *observability.Span, operation string, err error) error {
	if err == nil {
		span.End(nil)
		return nil
	}
	appErr := toAppError(err)
	observability.DomainErrors.WithLabelValues(operation, appErr.Code).Inc()
	span.End(appErr)
	return appErr
}

func uintPtr(v uint) *uint {
	return &v
}
