package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/versedb/versed/internal/model"
	"github.com/versedb/versed/internal/pkg/errcode"
	appErr "github.com/versedb/versed/internal/pkg/errors"
	"github.com/versedb/versed/internal/pkg/response"
	"github.com/versedb/versed/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Query   string                   `json:"query"`
	History []model.ConversationTurn `json:"history"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	answer, err := h.chat.Chat(c.Request.Context(), req.Query, req.History)
	if err != nil {
		switch {
		case errors.Is(err, appErr.ErrInvalid):
			response.Error(c, errcode.ErrInvalid, "query is required")
		case errors.Is(err, appErr.ErrMisconfigured):
			response.Error(c, errcode.ErrMisconfigured, service.UserMessage(err))
		case errors.Is(err, appErr.ErrNoEvidence):
			response.Error(c, errcode.ErrNoEvidence, service.UserMessage(err))
		case errors.Is(err, appErr.ErrGenerationUnavailable):
			response.Error(c, errcode.ErrGenerationUnavailable, service.UserMessage(err))
		default:
			handleError(c, err)
		}
		return
	}
	response.Success(c, answer)
}

func (h *ChatHandler) Suggestions(c *gin.Context) {
	response.Success(c, gin.H{"items": h.chat.Suggestions()})
}
