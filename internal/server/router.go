package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/proxe-ai/leadbridge/internal/handlers"
	"github.com/proxe-ai/leadbridge/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string

	WhatsAppAPIKey string
	VoiceAPIKey    string

	WebhookHandler  *handlers.WebhookHandler
	ChatHandler     *handlers.ChatHandler
	AdminHandler    *handlers.AdminHandler
	LeadsHandler    *handlers.LeadsHandler
	LeadFeedHandler *handlers.LeadFeedHandler
	StatusHandler   *handlers.StatusHandler

	APIKeyMiddleware *middleware.APIKeyMiddleware
	AuthMiddleware   *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("leadbridge"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "x-api-key"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// provider webhooks, shared-secret auth
		integrations := api.Group("/integrations")
		integrations.POST("/whatsapp", cfg.APIKeyMiddleware.Require(cfg.WhatsAppAPIKey), cfg.WebhookHandler.WhatsApp)
		integrations.POST("/voice", cfg.APIKeyMiddleware.Require(cfg.VoiceAPIKey), cfg.WebhookHandler.Voice)

		// embedded chat widget, no auth beyond CORS
		api.POST("/chat", cfg.ChatHandler.Turn)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Leads
	protected.GET("/leads", cfg.LeadsHandler.List)
	protected.GET("/leads/stream", cfg.LeadFeedHandler.Stream)
	protected.GET("/leads/:id", cfg.LeadsHandler.Get)
	// Admin
	protected.POST("/admin/backfill-leads", cfg.AdminHandler.BackfillLeads)
	protected.GET("/admin/backfill-leads", cfg.AdminHandler.BackfillStatus)
	protected.GET("/status", cfg.StatusHandler.Status)

	return router
}

// ParseOrigins splits a comma separated origin list from the environment.
func ParseOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
