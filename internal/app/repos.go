package app

import (
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
)

type Repos struct {
	Lead           repos.LeadRepo
	ChannelSession repos.ChannelSessionRepo
	Message        repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Lead:           repos.NewLeadRepo(db, log),
		ChannelSession: repos.NewChannelSessionRepo(db, log),
		Message:        repos.NewMessageRepo(db, log),
	}
}
