package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
)

// WebhookHandler receives provider deliveries for the WhatsApp and voice
// channels. Authentication happens in the API key middleware.
type WebhookHandler struct {
	log           *logger.Logger
	intakeService services.IntakeService
}

func NewWebhookHandler(log *logger.Logger, intakeService services.IntakeService) *WebhookHandler {
	return &WebhookHandler{log: log.With("handler", "WebhookHandler"), intakeService: intakeService}
}

func (wh *WebhookHandler) WhatsApp(c *gin.Context) {
	var payload services.WhatsAppPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_payload", err)
		return
	}

	result, err := wh.intakeService.HandleWhatsApp(c.Request.Context(), payload)
	if err != nil {
		wh.log.Warn("WhatsApp webhook failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "lead": result})
}

func (wh *WebhookHandler) Voice(c *gin.Context) {
	var payload services.VoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_payload", err)
		return
	}

	result, err := wh.intakeService.HandleVoice(c.Request.Context(), payload)
	if err != nil {
		wh.log.Warn("Voice webhook failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "lead": result})
}
