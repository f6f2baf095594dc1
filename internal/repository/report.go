package repository

import (
	"context"
	"errors"

	"interu/internal/models"

	"gorm.io/gorm"
)

// ReportFilter narrows the moderation queue. Limit <= 0 lists every report.
type ReportFilter struct {
	Status models.ReportStatus
	Limit  int
	Offset int
}

// ReportRepository persists moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, error)
	Save(ctx context.Context, report *models.Report) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Omit("Post").Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, err
	}
	return &report, nil
}

// List returns newest first, with the reported post attached even when withdrawn or deleted.
func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	limit, offset := openPage(filter.Limit, filter.Offset)
	q := r.db.WithContext(ctx).Preload("Post", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var reports []models.Report
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Save(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Omit("Post").Save(report).Error
}
