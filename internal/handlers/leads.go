package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proxe-ai/leadbridge/internal/middleware"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/services"
	"github.com/proxe-ai/leadbridge/internal/types"
)

const defaultLeadsPageSize = 50

// LeadsHandler serves the dashboard's lead list. The brand scope comes from
// the auth token; the query param is only a fallback for service tokens that
// carry no brand claim.
type LeadsHandler struct {
	log          *logger.Logger
	leadService  services.LeadService
	defaultBrand string
}

func NewLeadsHandler(log *logger.Logger, leadService services.LeadService, defaultBrand string) *LeadsHandler {
	return &LeadsHandler{
		log:          log.With("handler", "LeadsHandler"),
		leadService:  leadService,
		defaultBrand: defaultBrand,
	}
}

func (lh *LeadsHandler) List(c *gin.Context) {
	brand := c.GetString(middleware.ContextKeyBrand)
	if brand == "" {
		brand = c.Query("brand")
	}
	if brand == "" {
		brand = lh.defaultBrand
	}
	if brand == "" {
		RespondError(c, http.StatusBadRequest, "validation", types.ValidationError("brand is required"))
		return
	}

	limit := defaultLeadsPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "validation", types.ValidationError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	leads, err := lh.leadService.ListByBrand(c.Request.Context(), brand, limit)
	if err != nil {
		lh.log.Warn("Failed to list leads", "brand", brand, "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "count": len(leads), "leads": leads})
}

func (lh *LeadsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", types.ValidationError("invalid lead id"))
		return
	}

	lead, err := lh.leadService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if lead == nil {
		RespondError(c, http.StatusNotFound, "not_found", types.ErrNotFound)
		return
	}
	RespondOK(c, gin.H{"success": true, "lead": lead})
}
