package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
)

// APIKeyMiddleware guards provider webhook endpoints with a static shared
// secret delivered in the x-api-key header.
type APIKeyMiddleware struct {
	log *logger.Logger
}

func NewAPIKeyMiddleware(log *logger.Logger) *APIKeyMiddleware {
	return &APIKeyMiddleware{log: log.With("Middleware", "APIKeyMiddleware")}
}

func (am *APIKeyMiddleware) Require(expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedKey == "" {
			am.log.Warn("Webhook endpoint has no API key configured, rejecting", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		provided := c.GetHeader("x-api-key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expectedKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
