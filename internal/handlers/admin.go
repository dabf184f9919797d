package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
)

// AdminHandler exposes the backfill reconciler. Partial failure still returns
// 200 with per-category counts; callers inspect the errors counter.
type AdminHandler struct {
	log             *logger.Logger
	backfillService services.BackfillService
	defaultBrand    string
}

func NewAdminHandler(log *logger.Logger, backfillService services.BackfillService, defaultBrand string) *AdminHandler {
	return &AdminHandler{
		log:             log.With("handler", "AdminHandler"),
		backfillService: backfillService,
		defaultBrand:    defaultBrand,
	}
}

type backfillRequest struct {
	Brand string `json:"brand"`
	Limit int    `json:"limit"`
}

func (ah *AdminHandler) BackfillLeads(c *gin.Context) {
	var req backfillRequest
	// body is optional; defaults cover the common case
	_ = c.ShouldBindJSON(&req)
	if req.Brand == "" {
		req.Brand = ah.defaultBrand
	}

	ah.log.Info("Starting backfill", "brand", req.Brand, "limit", req.Limit)
	result, err := ah.backfillService.ReconcileUnlinkedSessions(c.Request.Context(), req.Brand, req.Limit)
	if err != nil {
		ah.log.Error("Backfill failed", "brand", req.Brand, "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "result": result})
}

func (ah *AdminHandler) BackfillStatus(c *gin.Context) {
	brand := c.Query("brand")
	if brand == "" {
		brand = ah.defaultBrand
	}

	status, err := ah.backfillService.Status(c.Request.Context(), brand)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "status": status})
}
