package anthropic

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
)

const defaultModel = "claude-sonnet-4-5"

// Turn is one prior exchange in a web chat conversation.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client generates agent replies for the web chat channel.
type Client interface {
	GenerateReply(ctx context.Context, system string, turns []Turn) (string, error)
}

type client struct {
	log       *logger.Logger
	sdk       sdk.Client
	model     string
	maxTokens int64
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("CLAUDE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing CLAUDE_API_KEY")
	}
	model := strings.TrimSpace(os.Getenv("CLAUDE_MODEL"))
	if model == "" {
		model = defaultModel
	}

	return &client{
		log:       log.With("service", "AnthropicClient"),
		sdk:       sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
	}, nil
}

func (c *client) GenerateReply(ctx context.Context, system string, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	messages := make([]sdk.MessageParam, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case "assistant":
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(t.Content)))
		default:
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(t.Content)))
		}
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no conversation turns supplied")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
	}
	if strings.TrimSpace(system) != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		return "", fmt.Errorf("anthropic returned empty reply (stop_reason=%s)", msg.StopReason)
	}
	return reply, nil
}
