package models

import "time"

// Conversation defines the conversation model based on the 'conversations' table
type Conversation struct {
	ID            int64      `json:"id" db:"id"`
	Subject       string     `json:"subject,omitempty" db:"subject"`
	ApplicationID *int64     `json:"applicationId,omitempty" db:"application_id"`
	CreatedBy     int64      `json:"createdBy" db:"created_by"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" db:"last_message_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

// ConversationSummary is a conversation as listed for one participant
type ConversationSummary struct {
	Conversation
	ParticipantIDs []int64 `json:"participantIds"`
	UnreadCount    int64   `json:"unreadCount"`
	LastMessage    string  `json:"lastMessage,omitempty"`
}

// Message defines the message model based on the 'messages' table
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
