package dto

// StartConversationRequest opens a conversation with another user
type StartConversationRequest struct {
	RecipientID   int64  `json:"recipientId" binding:"required,min=1" example:"7"`
	Subject       string `json:"subject" binding:"max=200"`
	ApplicationID *int64 `json:"applicationId" binding:"omitempty,min=1"`
	Message       string `json:"message" binding:"max=5000"`
}

// SendMessageRequest posts a message to a conversation
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000" example:"Hi, are you available for a call?"`
}

// UnreadCountResponse carries the unread message and notification counters
type UnreadCountResponse struct {
	Messages      int64 `json:"messages" example:"2"`
	Notifications int64 `json:"notifications,omitempty" example:"1"`
}
