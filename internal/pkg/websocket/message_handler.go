package websocket

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/hireloop/internal/app/models"
)

// ConversationWriter is the part of the messaging service used for inbound frames
type ConversationWriter interface {
	SendMessage(ctx context.Context, actor models.Actor, conversationID int64, content string) (*models.Message, error)
	MarkConversationRead(ctx context.Context, actor models.Actor, conversationID int64) error
}

// RoleResolver looks up the role of a connected user
type RoleResolver interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// MessageHandler routes inbound frames to the messaging service
type MessageHandler struct {
	hub      *Hub
	messages ConversationWriter
	users    RoleResolver
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(hub *Hub, messages ConversationWriter, users RoleResolver, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		hub:      hub,
		messages: messages,
		users:    users,
		timeout:  5 * time.Second,
		logger:   logger,
	}
}

// Start consumes inbound frames until ctx is cancelled
func (h *MessageHandler) Start(ctx context.Context) {
	inbound := make(chan *Inbound, 64)
	h.hub.AddListener(inbound)

	go func() {
		defer h.hub.RemoveListener(inbound)
		for {
			select {
			case <-ctx.Done():
				return
			case in := <-inbound:
				h.Handle(ctx, in)
			}
		}
	}()
}

// Handle processes a single inbound frame
func (h *MessageHandler) Handle(ctx context.Context, in *Inbound) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	user, err := h.users.GetUserByID(ctx, in.UserID)
	if err != nil {
		h.logger.Warn().Err(err).Int64("userID", in.UserID).Msg("Inbound frame from unknown user")
		return
	}
	actor := models.Actor{UserID: user.ID, Role: user.Role}

	switch in.Type {
	case EventMessage:
		if _, err := h.messages.SendMessage(ctx, actor, in.ConversationID, in.Content); err != nil {
			h.reject(in, err)
		}
	case EventRead:
		if err := h.messages.MarkConversationRead(ctx, actor, in.ConversationID); err != nil {
			h.reject(in, err)
		}
	default:
		h.logger.Debug().Str("type", in.Type).Int64("userID", in.UserID).Msg("Ignoring unknown inbound frame")
	}
}

func (h *MessageHandler) reject(in *Inbound, err error) {
	h.logger.Debug().Err(err).Int64("userID", in.UserID).Int64("conversationID", in.ConversationID).Msg("Inbound frame rejected")
	h.hub.SendToUser(in.UserID, EventError, map[string]interface{}{
		"conversationId": in.ConversationID,
		"message":        err.Error(),
	})
}
