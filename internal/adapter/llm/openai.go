package llm

import (
	"context"
	"encoding/base64"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

type openAIBackend struct {
	client      *openai.Client
	temperature float32
	maxTokens   int
}

func newOpenAIBackend(cfg config.LLMConfig) *openAIBackend {
	return &openAIBackend{
		client:      openai.NewClient(cfg.APIKey),
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxOutputTokens,
	}
}

func (o *openAIBackend) Generate(ctx context.Context, model string, req domain.ModelRequest) (string, error) {
	creq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    openAIMessages(req),
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}
	if req.JSONOutput {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned an empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIMessages(req domain.ModelRequest) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	if len(req.Attachments) == 0 {
		return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})
	}

	parts := make([]openai.ChatMessagePart, 0, len(req.Attachments)+1)
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.Prompt})
	for _, att := range req.Attachments {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + att.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(att.Data),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})
}
