package models

import (
	"time"
)

// Notification kinds
const (
	NotificationApplicationSubmitted = "APPLICATION_SUBMITTED"
	NotificationApplicationApproved  = "APPLICATION_APPROVED"
	NotificationApplicationRejected  = "APPLICATION_REJECTED"
	NotificationDepositReceived      = "DEPOSIT_RECEIVED"
)

// Notification is a best-effort side record; losing one never fails a
// workflow. Old rows are purged by the cleanup tasks.
type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `json:"message"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
