package app

import (
	"github.com/proxe-ai/leadbridge/internal/middleware"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
)

type Middleware struct {
	APIKey *middleware.APIKeyMiddleware
	Auth   *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		APIKey: middleware.NewAPIKeyMiddleware(log),
		Auth:   middleware.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}
