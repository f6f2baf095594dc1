package service

import (
	"context"
	"log/slog"
	"time"

	"interu/internal/cache"
	"interu/internal/featureflags"
	"interu/internal/middleware"
	"interu/internal/models"
	"interu/internal/observability"
	"interu/internal/repository"
	"interu/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxReportReason = 2000

// ModerationService handles post reports and moderator decisions.
type ModerationService struct {
	store       *repository.Store
	isModerator ModeratorCheck
	flags       *featureflags.Manager
	now         func() time.Time
}

// NewModerationService returns a new ModerationService.
func NewModerationService(store *repository.Store, isModerator ModeratorCheck, flags *featureflags.Manager) *ModerationService {
	return &ModerationService{
		store:       store,
		isModerator: isModerator,
		flags:       flags,
		now:         time.Now,
	}
}

// FileReport records a pending report. The same identity may report a post
// any number of times.
func (s *ModerationService) FileReport(ctx context.Context, postID, reporterID uint, reason string) (report *models.Report, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "moderation", "file_report",
		attribute.Int64("post.id", int64(postID)),
		attribute.Int64("user.id", int64(reporterID)),
	)
	defer func() { err = finish(span, "file_report", err) }()

	text, err := validation.RequireText(reason, maxReportReason)
	if err != nil {
		return nil, models.NewFieldError("reason", "reason "+err.Error())
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Posts.GetByID(ctx, postID); err != nil {
			return err
		}
		report = &models.Report{
			ReporterID: reporterID,
			PostID:     postID,
			Reason:     text,
			Status:     models.ReportPending,
		}
		return tx.Reports.Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	observability.ReportsFiled.Inc()
	return report, nil
}

// ListReports returns reports of any status to a moderator, newest first.
func (s *ModerationService) ListReports(ctx context.Context, moderatorID uint, filter repository.ReportFilter) (reports []models.Report, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "moderation", "list_reports", attribute.Int64("user.id", int64(moderatorID)))
	defer func() { err = finish(span, "list_reports", err) }()

	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	return s.store.Reports.List(ctx, filter)
}

// Resolve applies a moderator action. Hide withdraws the reported post and
// approves the report.
func (s *ModerationService) Resolve(ctx context.Context, reportID, moderatorID uint, rawAction string) (report *models.Report, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "moderation", "resolve",
		attribute.Int64("report.id", int64(reportID)),
		attribute.Int64("user.id", int64(moderatorID)),
		attribute.String("moderation.action", rawAction),
	)
	defer func() { err = finish(span, "resolve_report", err) }()

	if err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	action, ok := models.ParseModerationAction(rawAction)
	if !ok {
		return nil, models.NewFieldError("action", "action must be one of approve, reject, hide")
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Reports.GetByID(ctx, reportID)
		if err != nil {
			return err
		}
		if r.Resolved() && s.flags.Enabled(featureflags.ReportResolveOnce, moderatorID) {
			return models.NewConflictError("This report has already been resolved")
		}

		if action.WithdrawsPost() {
			err := tx.Posts.SetVisibility(ctx, r.PostID, models.PostWithdrawn)
			if err != nil && models.ErrorCode(err) != models.CodeNotFound {
				return err
			}
		}

		now := s.now()
		r.Status = action.ResultingStatus()
		r.ResolvedByID = uintPtr(moderatorID)
		r.ResolvedAt = &now
		if err := tx.Reports.Save(ctx, r); err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action.WithdrawsPost() {
		cache.InvalidatePost(ctx, report.PostID)
	}
	observability.ReportsResolved.WithLabelValues(string(action)).Inc()
	middleware.Logger.InfoContext(ctx, "Report resolved",
		slog.Uint64("report_id", uint64(reportID)),
		slog.String("action", string(action)),
		slog.Uint64("moderator_id", uint64(moderatorID)),
	)
	return report, nil
}

func (s *ModerationService) requireModerator(ctx context.Context, userID uint) error {
	if s.isModerator == nil {
		return models.NewForbiddenError("Moderator capability required")
	}
	ok, err := s.isModerator(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("Moderator capability required")
	}
	return nil
}
