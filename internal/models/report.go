package models

import "time"

// ReportStatus moves one way from pending to approved or rejected.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
)

// ParseReportStatus validates a status filter value.
func ParseReportStatus(s string) (ReportStatus, bool) {
	switch ReportStatus(s) {
	case ReportPending:
		return ReportPending, true
	case ReportApproved:
		return ReportApproved, true
	case ReportRejected:
		return ReportRejected, true
	default:
		return "", false
	}
}

// ModerationAction is a moderator decision on a report.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionHide    ModerationAction = "hide"
)

// ParseModerationAction validates a client-supplied action.
func ParseModerationAction(s string) (ModerationAction, bool) {
	switch ModerationAction(s) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	case ActionHide:
		return ActionHide, true
	default:
		return "", false
	}
}

// ResultingStatus is the report status the action leaves behind.
func (a ModerationAction) ResultingStatus() ReportStatus {
	switch a {
	case ActionReject:
		return ReportRejected
	case ActionApprove, ActionHide:
		return ReportApproved
	default:
		return ReportPending
	}
}

// WithdrawsPost reports whether the action hides the reported post.
func (a ModerationAction) WithdrawsPost() bool {
	return a == ActionHide
}

// Report is an identity's complaint about a SkillPost.
type Report struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ReporterID   uint         `gorm:"not null;index" json:"reporter_id"`
	PostID       uint         `gorm:"not null;index" json:"post_id"`
	Post         *SkillPost   `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Reason       string       `gorm:"type:text;not null" json:"reason"`
	Status       ReportStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	ResolvedByID *uint        `json:"resolved_by_id,omitempty"`
	ResolvedAt   *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Resolved reports whether a moderator has already decided the report.
func (r *Report) Resolved() bool {
	return r.Status != ReportPending
}
