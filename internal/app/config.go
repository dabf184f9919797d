package app

import (
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/utils"
)

type Config struct {
	Port           string
	JWTSecretKey   string
	WhatsAppAPIKey string
	VoiceAPIKey    string
	DefaultBrand   string
	SystemPrompt   string
	AllowedOrigins string
	Environment    string
}

const defaultSystemPrompt = "You are a helpful booking assistant for a local business. " +
	"Answer questions about services and availability, and politely collect the " +
	"customer's name, phone number, and email so the team can follow up."

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		WhatsAppAPIKey: utils.GetEnv("WHATSAPP_API_KEY", "", log),
		VoiceAPIKey:    utils.GetEnv("VOICE_API_KEY", "", log),
		DefaultBrand:   utils.GetEnv("DEFAULT_BRAND", "", log),
		SystemPrompt:   utils.GetEnv("CHAT_SYSTEM_PROMPT", defaultSystemPrompt, log),
		AllowedOrigins: utils.GetEnv("ALLOWED_ORIGINS", "", log),
		Environment:    utils.GetEnv("APP_ENV", "development", log),
	}
}
