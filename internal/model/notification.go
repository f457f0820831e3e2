package model

import "time"

// NotificationKind classifies a notification for display.
type NotificationKind string

const (
	NotifyWarning NotificationKind = "warning"
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyError   NotificationKind = "error"
)

// Notification is one entry of the read/unread alert log.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
	IsRead    bool             `json:"isRead"`
	Category  string           `json:"category"`
}

// RecordID implements store.Record.
func (n Notification) RecordID() string { return n.ID }
