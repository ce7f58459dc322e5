package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chathdi/internal/canvas"
	"chathdi/internal/transport/http/response"
)

type CanvasHandler struct {
	registry *canvas.Registry
}

type CreateCanvasRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language"`
}

type EditCanvasRequest struct {
	FileID       string `json:"file_id" binding:"required"`
	Content      string `json:"content"`
	FlushHistory bool   `json:"flush_history"`
}

func NewCanvasHandler(registry *canvas.Registry) *CanvasHandler {
	return &CanvasHandler{registry: registry}
}

func (h *CanvasHandler) sessionState(session *canvas.Session) gin.H {
	return gin.H{
		"session_id":     session.ID,
		"files":          session.Files(),
		"active_file_id": session.ActiveFileID(),
	}
}

// Create parses a code blob into a new canvas session.
func (h *CanvasHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session := h.registry.Create(userID, req.Code, req.Language)
	response.OK(c, h.sessionState(session))
}

func (h *CanvasHandler) Get(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	response.OK(c, h.sessionState(session))
}

// Edit replaces one file's content. The client sets flush_history at
// edit-batch boundaries (pause in typing, file switch) so undo steps stay
// coarse.
func (h *CanvasHandler) Edit(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req EditCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := session.Edit(req.FileID, req.Content); err != nil {
		response.Error(c, http.StatusNotFound, response.CodeCanvasNotFound, err.Error())
		return
	}
	if req.FlushHistory {
		session.FlushHistory()
	}
	response.OK(c, h.sessionState(session))
}

func (h *CanvasHandler) Undo(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	moved := session.Undo()
	state := h.sessionState(session)
	state["moved"] = moved
	response.OK(c, state)
}

func (h *CanvasHandler) Redo(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	moved := session.Redo()
	state := h.sessionState(session)
	state["moved"] = moved
	response.OK(c, state)
}

func (h *CanvasHandler) Preview(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(session.RenderPreview()))
}

func (h *CanvasHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	if err := h.registry.Delete(c.Param("id"), userID); err != nil {
		response.Error(c, http.StatusNotFound, response.CodeCanvasNotFound, err.Error())
		return
	}
	response.OK(c, gin.H{"deleted_session_id": c.Param("id")})
}

func (h *CanvasHandler) lookup(c *gin.Context) (*canvas.Session, bool) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return nil, false
	}
	session, err := h.registry.Get(c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, canvas.ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeCanvasNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "canvas lookup failed")
		}
		return nil, false
	}
	return session, true
}
