package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chathdi/internal/app"
	"chathdi/internal/transport/http/response"
)

type SearchHandler struct {
	retrievalService *app.RetrievalService
}

type SearchRequest struct {
	Query     string  `json:"query" binding:"required"`
	Threshold float64 `json:"threshold"`
	TopK      int     `json:"top_k"`
}

func NewSearchHandler(retrievalService *app.RetrievalService) *SearchHandler {
	return &SearchHandler{retrievalService: retrievalService}
}

// Search runs a raw hybrid search over the caller's visible documents.
func (h *SearchHandler) Search(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	matches, err := h.retrievalService.Search(c.Request.Context(), userID, req.Query, req.Threshold, req.TopK)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search failed")
		}
		return
	}
	response.OK(c, matches)
}
