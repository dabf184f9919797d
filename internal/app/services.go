package app

import (
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
)

type Services struct {
	Lead     services.LeadService
	Intake   services.IntakeService
	Chat     services.ChatService
	Backfill services.BackfillService
	Status   services.StatusService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	leadService := services.NewLeadService(db, log, repos.Lead, clients.LeadBus)
	intakeService := services.NewIntakeService(db, log, leadService, repos.Message, clients.GcpSpeech, cfg.DefaultBrand)
	chatService := services.NewChatService(db, log, repos.ChannelSession, repos.Message, leadService, clients.Anthropic, cfg.SystemPrompt, cfg.DefaultBrand)
	backfillService := services.NewBackfillService(db, log, repos.ChannelSession, repos.Lead, leadService)
	statusService := services.NewStatusService(db, log, repos.Lead)

	return Services{
		Lead:     leadService,
		Intake:   intakeService,
		Chat:     chatService,
		Backfill: backfillService,
		Status:   statusService,
	}, nil
}
