package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/hireloop/internal/app/models"
)

func newTestClient(h *Hub, userID int64, buf int) *Client {
	return &Client{hub: h, send: make(chan []byte, buf), userID: userID, logger: zerolog.Nop()}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestHubDeliversToEveryConnectionOfUser(t *testing.T) {
	h := startHub(t)
	a1 := newTestClient(h, 1, 4)
	a2 := newTestClient(h, 1, 4)
	b := newTestClient(h, 2, 4)
	h.register <- a1
	h.register <- a2
	h.register <- b

	assert.Eventually(t, func() bool { return h.ConnectionCount(1) == 2 }, time.Second, 10*time.Millisecond)

	h.SendToUser(1, EventNotification, map[string]string{"title": "hi"})

	assert.Equal(t, EventNotification, receive(t, a1).Type)
	assert.Equal(t, EventNotification, receive(t, a2).Type)
	assert.Len(t, b.send, 0)
}

func TestHubDropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := newTestClient(h, 7, 1)
	h.register <- slow
	assert.Eventually(t, func() bool { return h.IsOnline(7) }, time.Second, 10*time.Millisecond)

	h.SendToUser(7, EventMessage, "one")
	h.SendToUser(7, EventMessage, "two")

	assert.Eventually(t, func() bool { return !h.IsOnline(7) }, time.Second, 10*time.Millisecond)
}

func TestHubJoinAndLeaveAfterShutdown(t *testing.T) {
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, 9, 1)
	require.True(t, h.join(c))
	assert.Eventually(t, func() bool { return h.IsOnline(9) }, time.Second, 10*time.Millisecond)

	cancel()
	<-stopped
	assert.False(t, h.IsOnline(9))

	left := make(chan struct{})
	go func() {
		h.leave(c)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	assert.False(t, h.join(newTestClient(h, 10, 1)))
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t)
	c := newTestClient(h, 3, 1)
	h.register <- c
	h.unregister <- c

	assert.Eventually(t, func() bool { return !h.IsOnline(3) }, time.Second, 10*time.Millisecond)
	_, open := <-c.send
	assert.False(t, open)
}

type fakeConversations struct {
	sent    []string
	readFor []int64
	err     error
}

func (f *fakeConversations) SendMessage(_ context.Context, actor models.Actor, conversationID int64, content string) (*models.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, content)
	return &models.Message{ConversationID: conversationID, SenderID: actor.UserID, Content: content}, nil
}

func (f *fakeConversations) MarkConversationRead(_ context.Context, _ models.Actor, conversationID int64) error {
	f.readFor = append(f.readFor, conversationID)
	return f.err
}

type fakeUsers struct{}

func (fakeUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id, Role: models.RoleCandidate, IsActive: true}, nil
}

func TestMessageHandlerRoutesFrames(t *testing.T) {
	h := startHub(t)
	conv := &fakeConversations{}
	mh := NewMessageHandler(h, conv, fakeUsers{}, zerolog.Nop())

	mh.Handle(context.Background(), &Inbound{Type: EventMessage, ConversationID: 9, Content: "hello", UserID: 4})
	mh.Handle(context.Background(), &Inbound{Type: EventRead, ConversationID: 9, UserID: 4})
	mh.Handle(context.Background(), &Inbound{Type: "typing", ConversationID: 9, UserID: 4})

	assert.Equal(t, []string{"hello"}, conv.sent)
	assert.Equal(t, []int64{9}, conv.readFor)
}

func TestMessageHandlerReportsErrorsToSender(t *testing.T) {
	h := startHub(t)
	client := newTestClient(h, 4, 4)
	h.register <- client
	assert.Eventually(t, func() bool { return h.IsOnline(4) }, time.Second, 10*time.Millisecond)

	mh := NewMessageHandler(h, &fakeConversations{err: errors.New("not a participant")}, fakeUsers{}, zerolog.Nop())
	mh.Handle(context.Background(), &Inbound{Type: EventMessage, ConversationID: 9, Content: "x", UserID: 4})

	assert.Equal(t, EventError, receive(t, client).Type)
}
