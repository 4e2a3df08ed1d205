package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/hireloop/internal/app/models/dto"
	"github.com/yigit/hireloop/internal/app/services"
	"github.com/yigit/hireloop/internal/middleware"
	"github.com/yigit/hireloop/internal/pkg/helpers"
)

// MessagingController handles conversations and messages
type MessagingController struct {
	messagingService    services.MessagingService
	notificationService services.NotificationService
}

// NewMessagingController creates a new MessagingController
func NewMessagingController(messagingService services.MessagingService, notificationService services.NotificationService) *MessagingController {
	return &MessagingController{
		messagingService:    messagingService,
		notificationService: notificationService,
	}
}

// StartConversation opens or reuses a conversation
// @Summary Start a conversation
// @Description Returns the existing conversation when one already links the two users for the same application. An optional first message is sent right away.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartConversationRequest true "Recipient and optional first message"
// @Success 201 {object} dto.APIResponse{data=models.Conversation} "Conversation"
// @Failure 400 {object} dto.ErrorResponse "Invalid recipient"
// @Failure 403 {object} dto.ErrorResponse "Application not visible"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Router /conversations [post]
func (c *MessagingController) StartConversation(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.StartConversationRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	conv, err := c.messagingService.StartConversation(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, conv, "")
}

// ListConversations lists the caller's conversations
// @Summary My conversations
// @Description Most recently active first, with per-conversation unread counts
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.ConversationSummary}} "Conversations"
// @Router /conversations [get]
func (c *MessagingController) ListConversations(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	convs, total, err := c.messagingService.ListConversations(ctx.Request.Context(), actor, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondPage(ctx, convs, total, page, size)
}

// GetConversation returns a conversation
// @Summary Get a conversation
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Conversation} "Conversation"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Conversation not found"
// @Router /conversations/{id} [get]
func (c *MessagingController) GetConversation(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	conv, err := c.messagingService.GetConversation(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, conv, "")
}

// SendMessage posts a message
// @Summary Send a message
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.Message} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Empty or too long"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Conversation not found"
// @Router /conversations/{id}/messages [post]
func (c *MessagingController) SendMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	msg, err := c.messagingService.SendMessage(ctx.Request.Context(), actor, id, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, msg, "")
}

// ListMessages pages backwards through a conversation
// @Summary List messages
// @Description Newest first. Pass the smallest id seen as before to load older messages.
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Param before query int false "Only messages with a smaller id"
// @Param limit query int false "Max messages" default(50)
// @Success 200 {object} dto.APIResponse{data=[]models.Message} "Messages"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Conversation not found"
// @Router /conversations/{id}/messages [get]
func (c *MessagingController) ListMessages(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var before int64
	if raw := ctx.Query("before"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			badQuery(ctx, "before", "before must be a message id")
			return
		}
		before = v
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	if err != nil {
		badQuery(ctx, "limit", "limit must be a number")
		return
	}

	messages, err := c.messagingService.ListMessages(ctx.Request.Context(), actor, id, before, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, messages, "")
}

// MarkRead marks a conversation read for the caller
// @Summary Mark a conversation read
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse "Marked read"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /conversations/{id}/read [post]
func (c *MessagingController) MarkRead(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.messagingService.MarkConversationRead(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, nil, "Conversation marked read")
}

// UnreadCount returns unread message and notification counters
// @Summary Unread counters
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse} "Counters"
// @Router /conversations/unread [get]
func (c *MessagingController) UnreadCount(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	messages, err := c.messagingService.CountUnread(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	notifications, err := c.notificationService.CountUnread(ctx.Request.Context(), actor.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.UnreadCountResponse{Messages: messages, Notifications: notifications}, "")
}
