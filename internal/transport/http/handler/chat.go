package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chathdi/internal/app"
	"chathdi/internal/model"
	"chathdi/internal/transport/http/middleware"
	"chathdi/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	ConversationID string             `json:"conversation_id"`
	Content        string             `json:"content" binding:"required"`
	Model          string             `json:"model"`
	Attachments    []model.Attachment `json:"attachments"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:         userID,
		ConversationID: req.ConversationID,
		Content:        req.Content,
		Model:          req.Model,
		Attachments:    req.Attachments,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	conversationID := c.Query("conversation_id")
	if conversationID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing conversation_id")
		return
	}

	messages, err := h.chatService.GetHistory(c.Request.Context(), userID, conversationID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}
	response.OK(c, messages)
}

func getUserIDFromContext(c *gin.Context) (string, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := userIDAny.(string)
	return userID, ok && userID != ""
}

func isPrivilegedFromContext(c *gin.Context) bool {
	v, exists := c.Get(middleware.ContextPrivilegedKey)
	if !exists {
		return false
	}
	privileged, ok := v.(bool)
	return ok && privileged
}
