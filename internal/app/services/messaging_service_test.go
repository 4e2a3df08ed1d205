package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/pkg/apperrors"
	"github.com/yigit/hireloop/internal/pkg/validation"
	"github.com/yigit/hireloop/internal/pkg/websocket"
)

func (w *world) messagingService() MessagingService {
	return NewMessagingService(w.messages, w.users, w.applications, w.authz, w.notifier, w.pusher, w.mailer, testLogger)
}

func TestStartConversationWithMessage(t *testing.T) {
	w := newWorld()
	w.pusher.online[candidateUserID] = false
	svc := w.messagingService()
	ctx := context.Background()

	conv, err := svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{
		RecipientID: candidateUserID,
		Subject:     "Backend Engineer role",
		Message:     "Hi Cal, do you have time for a call?",
	})
	require.NoError(t, err)
	assert.NotNil(t, conv.LastMessageAt)

	// both participants get the message pushed, only the recipient is notified
	assert.Equal(t, 1, w.pusher.count(employerUserID, websocket.EventMessage))
	assert.Equal(t, 1, w.pusher.count(candidateUserID, websocket.EventMessage))
	assert.Len(t, w.notifications.forUser(candidateUserID, models.NotificationNewMessage), 1)
	assert.Empty(t, w.notifications.forUser(employerUserID, models.NotificationNewMessage))

	require.Len(t, w.mailer.sent, 1)
	assert.Equal(t, "message", w.mailer.sent[0].kind)

	again, err := svc.StartConversation(ctx, candidateActor, &dto.StartConversationRequest{RecipientID: employerUserID})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestOnlineRecipientGetsNoEmail(t *testing.T) {
	w := newWorld()
	w.pusher.online[candidateUserID] = true
	svc := w.messagingService()

	_, err := svc.StartConversation(context.Background(), employerActor, &dto.StartConversationRequest{
		RecipientID: candidateUserID,
		Message:     "ping",
	})
	require.NoError(t, err)
	assert.Empty(t, w.mailer.sent)
}

func TestStartConversationRejections(t *testing.T) {
	w := newWorld()
	svc := w.messagingService()
	ctx := context.Background()

	_, err := svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: employerUserID})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: 999})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	w.users.byID[otherCandUserID].IsActive = false
	_, err = svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: otherCandUserID})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	app := w.seedApplication(models.StatusSubmitted)
	_, err = svc.StartConversation(ctx, outsiderActor, &dto.StartConversationRequest{RecipientID: candidateUserID, ApplicationID: &app.ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestNonParticipantIsRejected(t *testing.T) {
	w := newWorld()
	svc := w.messagingService()
	ctx := context.Background()

	conv, err := svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: candidateUserID})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, outsiderActor, conv.ID, "let me in")
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = svc.ListMessages(ctx, outsiderActor, conv.ID, 0, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = svc.GetConversation(ctx, outsiderActor, conv.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)
}

func TestSendMessageValidation(t *testing.T) {
	w := newWorld()
	svc := w.messagingService()
	ctx := context.Background()

	conv, err := svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: candidateUserID})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, employerActor, conv.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.SendMessage(ctx, employerActor, conv.ID, strings.Repeat("a", validation.MessageMaxLength+1))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUnreadAndReadReceipts(t *testing.T) {
	w := newWorld()
	svc := w.messagingService()
	ctx := context.Background()

	conv, err := svc.StartConversation(ctx, employerActor, &dto.StartConversationRequest{RecipientID: candidateUserID})
	require.NoError(t, err)
	for _, text := range []string{"one", "two"} {
		_, err := svc.SendMessage(ctx, employerActor, conv.ID, text)
		require.NoError(t, err)
	}

	unread, err := svc.CountUnread(ctx, candidateActor)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	messages, err := svc.ListMessages(ctx, candidateActor, conv.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "two", messages[0].Content)

	require.NoError(t, svc.MarkConversationRead(ctx, candidateActor, conv.ID))
	assert.Equal(t, 1, w.pusher.count(employerUserID, websocket.EventRead))
	assert.Equal(t, 0, w.pusher.count(candidateUserID, websocket.EventRead))

	unread, err = svc.CountUnread(ctx, candidateActor)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationService(t *testing.T) {
	w := newWorld()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, w.notifier.Notify(ctx, &models.Notification{UserID: candidateUserID, Type: models.NotificationSystem, Title: "hello"}))
	}
	assert.Equal(t, 3, w.pusher.count(candidateUserID, websocket.EventNotification))

	count, err := w.notifier.CountUnread(ctx, candidateUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	first := w.notifications.items[0]
	assert.ErrorIs(t, w.notifier.MarkRead(ctx, employerUserID, first.ID), apperrors.ErrNotificationNotFound)
	require.NoError(t, w.notifier.MarkRead(ctx, candidateUserID, first.ID))

	marked, err := w.notifier.MarkAllRead(ctx, candidateUserID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	unread, _, err := w.notifier.ListNotifications(ctx, candidateUserID, true, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
