package models

import "time"

// ApprovalNotification is an outbox entry informing a submitter of an
// approval or rejection outcome. Rows are append-only; the only mutation
// ever applied is setting read_at.
type ApprovalNotification struct {
	NotificationID  int        `gorm:"primaryKey;column:id" json:"id"`
	ClientID        int        `gorm:"column:client_id" json:"client_id"`
	UserID          int        `gorm:"column:user_id" json:"user_id"`
	ClientName      string     `gorm:"column:client_name" json:"client_name"`
	ApprovalStatus  string     `gorm:"column:approval_status" json:"approval_status"` // approved|rejected
	RejectionReason *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	ReadAt          *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
}

func (ApprovalNotification) TableName() string {
	return "approval_notifications"
}
