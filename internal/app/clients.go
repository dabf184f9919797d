package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/proxe-ai/leadbridge/internal/clients/anthropic"
	"github.com/proxe-ai/leadbridge/internal/clients/gcp"
	"github.com/proxe-ai/leadbridge/internal/clients/redis"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
)

type Clients struct {
	LeadBus   redis.LeadBus
	Anthropic anthropic.Client
	GcpSpeech gcp.Speech
}

// wireClients builds the optional external clients. The lead bus and speech
// client are skipped when unconfigured so a bare Postgres-only deployment
// still serves webhooks and chat.
func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var bus redis.LeadBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := redis.NewLeadBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis lead bus: %w", err)
		}
		bus = b
	}

	// Anthropic
	ai, err := anthropic.NewClient(log)
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return Clients{}, fmt.Errorf("init anthropic client: %w", err)
	}

	// Gcp speech, used only when a voice webhook arrives without a transcript
	var speech gcp.Speech
	if strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) != "" ||
		strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")) != "" {
		s, err := gcp.NewSpeech(log)
		if err != nil {
			log.Warn("Speech client init failed, voice transcription disabled", "error", err)
		} else {
			speech = s
		}
	}

	return Clients{
		LeadBus:   bus,
		Anthropic: ai,
		GcpSpeech: speech,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
	}
	if c.LeadBus != nil {
		_ = c.LeadBus.Close()
	}
}
