package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
)

type ChatHandler struct {
	log         *logger.Logger
	chatService services.ChatService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chatService: chatService}
}

func (ch *ChatHandler) Turn(c *gin.Context) {
	var turn services.ChatTurn
	if err := c.ShouldBindJSON(&turn); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_payload", err)
		return
	}

	reply, err := ch.chatService.HandleTurn(c.Request.Context(), turn)
	if err != nil {
		ch.log.Warn("Chat turn failed", "session_id", turn.ExternalSessionID, "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, reply)
}
