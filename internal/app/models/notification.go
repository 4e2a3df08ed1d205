package models

import "time"

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationApplicationStatus NotificationType = "APPLICATION_STATUS"
	NotificationNewApplication    NotificationType = "NEW_APPLICATION"
	NotificationNewMessage        NotificationType = "NEW_MESSAGE"
	NotificationJobAssigned       NotificationType = "JOB_ASSIGNED"
	NotificationSystem            NotificationType = "SYSTEM"
)

// Notification defines the notification model based on the 'notifications' table
type Notification struct {
	ID        int64                  `json:"id" db:"id"`
	UserID    int64                  `json:"userId" db:"user_id"`
	Type      NotificationType       `json:"type" db:"type" example:"APPLICATION_STATUS"`
	Title     string                 `json:"title" db:"title"`
	Message   string                 `json:"message" db:"message"`
	Data      map[string]interface{} `json:"data,omitempty" db:"data"`
	IsRead    bool                   `json:"isRead" db:"is_read"`
	ReadAt    *time.Time             `json:"readAt,omitempty" db:"read_at"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
}
