package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

type anthropicBackend struct {
	client      anthropic.Client
	temperature float64
	maxTokens   int64
}

func newAnthropicBackend(cfg config.LLMConfig) *anthropicBackend {
	return &anthropicBackend{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxOutputTokens),
	}
}

func (a *anthropicBackend) Generate(ctx context.Context, model string, req domain.ModelRequest) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		Messages:    anthropicMessages(req),
	})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic returned an empty response")
	}
	return sb.String(), nil
}

func anthropicMessages(req domain.ModelRequest) []anthropic.MessageParam {
	msgs := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, turn := range req.History {
		if turn.Role == domain.ChatRoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(req.Attachments)+1)
	for _, att := range req.Attachments {
		blocks = append(blocks, anthropic.NewImageBlockBase64(att.MIMEType, base64.StdEncoding.EncodeToString(att.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	return append(msgs, anthropic.NewUserMessage(blocks...))
}
