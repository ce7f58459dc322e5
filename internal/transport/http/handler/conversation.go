package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chathdi/internal/app"
	"chathdi/internal/model"
	"chathdi/internal/transport/http/response"
)

type ConversationHandler struct {
	chatService *app.ChatService
}

type SaveConversationRequest struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Messages  []model.ChatMessage `json:"messages"`
	IsPinned  bool                `json:"is_pinned"`
	ProjectID *string             `json:"project_id"`
}

func NewConversationHandler(chatService *app.ChatService) *ConversationHandler {
	return &ConversationHandler{chatService: chatService}
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	conversations, err := h.chatService.ListConversations(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list conversations failed")
		return
	}
	response.OK(c, conversations)
}

// Save upserts a client-driven conversation snapshot (title edits, pinning,
// project moves, client-side message edits).
func (h *ConversationHandler) Save(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SaveConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	conv := &model.Conversation{
		ID:        req.ID,
		UserID:    userID,
		Title:     req.Title,
		IsPinned:  req.IsPinned,
		ProjectID: req.ProjectID,
	}
	if err := conv.SetMessages(req.Messages); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid messages payload")
		return
	}

	if err := h.chatService.SaveConversation(c.Request.Context(), conv); err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save conversation failed")
		}
		return
	}
	response.OK(c, conv)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	conversationID := c.Param("id")
	if conversationID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid conversation id")
		return
	}
	if err := h.chatService.DeleteConversation(c.Request.Context(), userID, conversationID); err != nil {
		switch {
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete conversation failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_conversation_id": conversationID})
}
