package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/auth"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/email"
	"github.com/yigit/hireloop/internal/pkg/metrics"
	"github.com/yigit/hireloop/internal/pkg/validation"
	"github.com/yigit/hireloop/internal/pkg/websocket"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

// MessagingService defines the interface for conversations and messages
type MessagingService interface {
	StartConversation(ctx context.Context, actor models.Actor, req *dto.StartConversationRequest) (*models.Conversation, error)
	ListConversations(ctx context.Context, actor models.Actor, page, size int) ([]*models.ConversationSummary, int64, error)
	GetConversation(ctx context.Context, actor models.Actor, id int64) (*models.Conversation, error)
	SendMessage(ctx context.Context, actor models.Actor, conversationID int64, content string) (*models.Message, error)
	ListMessages(ctx context.Context, actor models.Actor, conversationID, before int64, limit int) ([]*models.Message, error)
	MarkConversationRead(ctx context.Context, actor models.Actor, conversationID int64) error
	CountUnread(ctx context.Context, actor models.Actor) (int64, error)
}

// ReadReceipt is pushed to the other participants when a conversation is read
type ReadReceipt struct {
	ConversationID int64     `json:"conversationId"`
	UserID         int64     `json:"userId"`
	ReadAt         time.Time `json:"readAt"`
}

type messagingServiceImpl struct {
	messages      MessageStore
	users         UserStore
	applications  ApplicationStore
	authz         *auth.AuthorizationService
	notifications NotificationService
	pusher        Pusher
	mailer        email.EmailService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewMessagingService creates a new messaging service instance
func NewMessagingService(
	messages MessageStore,
	users UserStore,
	applications ApplicationStore,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	pusher Pusher,
	mailer email.EmailService,
	logger zerolog.Logger,
) MessagingService {
	return &messagingServiceImpl{
		messages:      messages,
		users:         users,
		applications:  applications,
		authz:         authz,
		notifications: notifications,
		pusher:        pusher,
		mailer:        mailer,
		logger:        logger,
		now:           time.Now,
	}
}

// StartConversation opens (or returns the existing) two-party conversation
func (s *messagingServiceImpl) StartConversation(ctx context.Context, actor models.Actor, req *dto.StartConversationRequest) (*models.Conversation, error) {
	if req.RecipientID == actor.UserID {
		return nil, apperrors.NewBadRequestError("cannot start a conversation with yourself")
	}

	recipient, err := s.users.GetUserByID(ctx, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if !recipient.IsActive {
		return nil, apperrors.NewBadRequestError("recipient account is not active")
	}

	if req.ApplicationID != nil {
		app, err := s.applications.GetApplicationByID(ctx, *req.ApplicationID)
		if err != nil {
			return nil, err
		}
		if err := auth.Require(s.authz.CanViewApplication(ctx, actor, app)); err != nil {
			return nil, err
		}
	}

	conv, err := s.messages.FindDirectConversation(ctx, actor.UserID, recipient.ID, req.ApplicationID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrConversationNotFound):
		conv = &models.Conversation{
			Subject:       strings.TrimSpace(validation.SanitizeText(req.Subject)),
			ApplicationID: req.ApplicationID,
			CreatedBy:     actor.UserID,
		}
		id, err := s.messages.CreateConversation(ctx, conv, []int64{actor.UserID, recipient.ID})
		if err != nil {
			return nil, err
		}
		conv.ID = id
		s.logger.Info().Int64("conversationID", id).Int64("userID", actor.UserID).Int64("recipientID", recipient.ID).Msg("Conversation started")
	default:
		return nil, err
	}

	if strings.TrimSpace(req.Message) != "" {
		msg, err := s.SendMessage(ctx, actor, conv.ID, req.Message)
		if err != nil {
			return nil, err
		}
		conv.LastMessageAt = &msg.CreatedAt
	}
	return conv, nil
}

func (s *messagingServiceImpl) ListConversations(ctx context.Context, actor models.Actor, page, size int) ([]*models.ConversationSummary, int64, error) {
	return s.messages.ListConversations(ctx, actor.UserID, page, size)
}

// requireParticipant loads the conversation and checks membership
func (s *messagingServiceImpl) requireParticipant(ctx context.Context, actor models.Actor, conversationID int64) (*models.Conversation, error) {
	conv, err := s.messages.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	ok, err := s.messages.IsParticipant(ctx, conversationID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotParticipant
	}
	return conv, nil
}

func (s *messagingServiceImpl) GetConversation(ctx context.Context, actor models.Actor, id int64) (*models.Conversation, error) {
	return s.requireParticipant(ctx, actor, id)
}

// SendMessage stores a message and delivers it to every participant
func (s *messagingServiceImpl) SendMessage(ctx context.Context, actor models.Actor, conversationID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(validation.SanitizeText(content))
	if !validation.NewStringValidation(content).WithMaxLength(validation.MessageMaxLength).Validate() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("message must be between 1 and %d characters", validation.MessageMaxLength),
			map[string]interface{}{"content": "invalid length"})
	}

	conv, err := s.requireParticipant(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{ConversationID: conversationID, SenderID: actor.UserID, Content: content}
	id, err := s.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	metrics.MessagesSent.Inc()

	participants, err := s.messages.ListParticipants(ctx, conversationID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("conversationID", conversationID).Msg("Failed to list participants for delivery")
		return msg, nil
	}
	s.deliver(ctx, actor, conv, msg, participants)
	return msg, nil
}

func (s *messagingServiceImpl) deliver(ctx context.Context, actor models.Actor, conv *models.Conversation, msg *models.Message, participants []int64) {
	var sender *models.User
	for _, userID := range participants {
		s.pusher.SendToUser(userID, websocket.EventMessage, msg)
		if userID == actor.UserID {
			continue
		}

		if sender == nil {
			u, err := s.users.GetUserByID(ctx, actor.UserID)
			if err != nil {
				s.logger.Warn().Err(err).Int64("userID", actor.UserID).Msg("Failed to load message sender")
				u = &models.User{ID: actor.UserID}
			}
			sender = u
		}

		n := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationNewMessage,
			Title:   "New message",
			Message: fmt.Sprintf("%s sent you a message", strings.TrimSpace(sender.FullName())),
			Data:    map[string]interface{}{"conversationId": conv.ID, "messageId": msg.ID},
		}
		if err := s.notifications.Notify(ctx, n); err != nil {
			metrics.RecordSideEffectFailure("notification")
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to create message notification")
		}

		if !s.pusher.IsOnline(userID) {
			s.emailOffline(ctx, userID, sender, conv)
		}
	}
}

func (s *messagingServiceImpl) emailOffline(ctx context.Context, userID int64, sender *models.User, conv *models.Conversation) {
	recipient, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return
	}
	if err := s.mailer.SendNewMessageEmail(recipient.Email, recipient.FullName(), strings.TrimSpace(sender.FullName()), conv.Subject); err != nil {
		metrics.RecordSideEffectFailure("email")
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to send new message email")
	}
}

// ListMessages returns messages newest first, before the given id when set
func (s *messagingServiceImpl) ListMessages(ctx context.Context, actor models.Actor, conversationID, before int64, limit int) ([]*models.Message, error) {
	if _, err := s.requireParticipant(ctx, actor, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return s.messages.ListMessages(ctx, conversationID, before, limit)
}

// MarkConversationRead records the read position and tells the other participants
func (s *messagingServiceImpl) MarkConversationRead(ctx context.Context, actor models.Actor, conversationID int64) error {
	now := s.now()
	if err := s.messages.MarkRead(ctx, conversationID, actor.UserID, now); err != nil {
		return err
	}

	participants, err := s.messages.ListParticipants(ctx, conversationID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("conversationID", conversationID).Msg("Failed to list participants for read receipt")
		return nil
	}
	receipt := ReadReceipt{ConversationID: conversationID, UserID: actor.UserID, ReadAt: now}
	for _, userID := range participants {
		if userID != actor.UserID {
			s.pusher.SendToUser(userID, websocket.EventRead, receipt)
		}
	}
	return nil
}

func (s *messagingServiceImpl) CountUnread(ctx context.Context, actor models.Actor) (int64, error) {
	return s.messages.CountUnread(ctx, actor.UserID)
}
