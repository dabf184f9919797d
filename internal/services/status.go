package services

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
)

var statusEnvKeys = []string{
	"POSTGRES_HOST",
	"POSTGRES_NAME",
	"CLAUDE_API_KEY",
	"CLAUDE_MODEL",
	"REDIS_ADDR",
	"WHATSAPP_API_KEY",
	"VOICE_API_KEY",
	"PORT",
}

type EnvKeyStatus struct {
	Key   string `json:"key"`
	IsSet bool   `json:"is_set"`
}

type DatabaseStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StatusReport struct {
	Status          string         `json:"status"`
	Timestamp       time.Time      `json:"timestamp"`
	EnvironmentKeys []EnvKeyStatus `json:"environment_keys"`
	Database        DatabaseStatus `json:"database"`
	TotalLeads      int64          `json:"total_leads"`
}

// StatusService backs the admin status endpoint: env key presence, database
// reachability, and lead totals.
type StatusService interface {
	Report(ctx context.Context) StatusReport
}

type statusService struct {
	db       *gorm.DB
	log      *logger.Logger
	leadRepo repos.LeadRepo
}

func NewStatusService(db *gorm.DB, log *logger.Logger, leadRepo repos.LeadRepo) StatusService {
	serviceLog := log.With("service", "StatusService")
	return &statusService{db: db, log: serviceLog, leadRepo: leadRepo}
}

func (ss *statusService) Report(ctx context.Context) StatusReport {
	report := StatusReport{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Database:  DatabaseStatus{Status: "disconnected", Message: "not checked"},
	}

	for _, key := range statusEnvKeys {
		_, isSet := os.LookupEnv(key)
		report.EnvironmentKeys = append(report.EnvironmentKeys, EnvKeyStatus{Key: key, IsSet: isSet})
	}

	count, err := ss.leadRepo.CountByBrand(ctx, nil, "")
	if err != nil {
		report.Status = "degraded"
		report.Database = DatabaseStatus{Status: "error", Message: err.Error()}
		return report
	}
	report.Database = DatabaseStatus{Status: "connected", Message: "database connection successful"}
	report.TotalLeads = count
	return report
}
