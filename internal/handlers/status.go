package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
)

type StatusHandler struct {
	log           *logger.Logger
	statusService services.StatusService
}

func NewStatusHandler(log *logger.Logger, statusService services.StatusService) *StatusHandler {
	return &StatusHandler{log: log.With("handler", "StatusHandler"), statusService: statusService}
}

func (sh *StatusHandler) Status(c *gin.Context) {
	RespondOK(c, sh.statusService.Report(c.Request.Context()))
}
