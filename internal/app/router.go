package app

import (
	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/server"
)

func wireRouter(cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowedOrigins:   server.ParseOrigins(cfg.AllowedOrigins),
		WhatsAppAPIKey:   cfg.WhatsAppAPIKey,
		VoiceAPIKey:      cfg.VoiceAPIKey,
		WebhookHandler:   handlers.Webhook,
		ChatHandler:      handlers.Chat,
		AdminHandler:     handlers.Admin,
		LeadsHandler:     handlers.Leads,
		LeadFeedHandler:  handlers.LeadFeed,
		StatusHandler:    handlers.Status,
		APIKeyMiddleware: middleware.APIKey,
		AuthMiddleware:   middleware.Auth,
	})
}
