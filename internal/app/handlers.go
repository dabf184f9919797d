package app

import (
	"github.com/proxe-ai/leadbridge/internal/handlers"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
)

type Handlers struct {
	Webhook  *handlers.WebhookHandler
	Chat     *handlers.ChatHandler
	Admin    *handlers.AdminHandler
	Leads    *handlers.LeadsHandler
	LeadFeed *handlers.LeadFeedHandler
	Status   *handlers.StatusHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Webhook:  handlers.NewWebhookHandler(log, services.Intake),
		Chat:     handlers.NewChatHandler(log, services.Chat),
		Admin:    handlers.NewAdminHandler(log, services.Backfill, cfg.DefaultBrand),
		Leads:    handlers.NewLeadsHandler(log, services.Lead, cfg.DefaultBrand),
		LeadFeed: handlers.NewLeadFeedHandler(log),
		Status:   handlers.NewStatusHandler(log, services.Status),
	}
}
