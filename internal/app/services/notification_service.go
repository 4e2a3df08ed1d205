package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/pkg/websocket"
)

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Notify(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, page, size int) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type notificationServiceImpl struct {
	store  NotificationStore
	pusher Pusher
	logger zerolog.Logger
	now    func() time.Time
}

// NewNotificationService creates a new notification service instance
func NewNotificationService(store NotificationStore, pusher Pusher, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		store:  store,
		pusher: pusher,
		logger: logger,
		now:    time.Now,
	}
}

// Notify stores a notification and pushes it to the user's open connections
func (s *notificationServiceImpl) Notify(ctx context.Context, n *models.Notification) error {
	id, err := s.store.CreateNotification(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	s.pusher.SendToUser(n.UserID, websocket.EventNotification, n)
	return nil
}

func (s *notificationServiceImpl) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, page, size int) ([]*models.Notification, int64, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly, page, size)
}

// MarkRead marks one of the user's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.store.MarkRead(ctx, notificationID, userID, s.now())
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, userID, s.now())
}

func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}
