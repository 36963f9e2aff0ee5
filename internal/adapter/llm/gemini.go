package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/heartmarshall/shopping-assistant/internal/config"
	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

type geminiBackend struct {
	client      *genai.Client
	temperature float32
	maxTokens   int32
}

func newGeminiBackend(ctx context.Context, cfg config.LLMConfig) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiBackend{
		client:      client,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxOutputTokens),
	}, nil
}

func (g *geminiBackend) Generate(ctx context.Context, model string, req domain.ModelRequest) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxTokens,
	}
	if req.JSONOutput {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, geminiContents(req), genCfg)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

// geminiContents replays prior turns with the assistant relabeled as "model",
// then appends the prompt and any attachments as the final user turn.
func geminiContents(req domain.ModelRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == domain.ChatRoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	parts := make([]*genai.Part, 0, len(req.Attachments)+1)
	for _, a := range req.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	return append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
}
