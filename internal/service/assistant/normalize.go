package assistant

import (
	"context"
	"fmt"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// Normalize maps a free-text item name to its canonical name, category and
// unit. An unparsable model answer falls back to the title-cased input.
func (s *Service) Normalize(ctx context.Context, in NormalizeInput) (domain.NormalizedItem, error) {
	if err := in.Validate(); err != nil {
		return domain.NormalizedItem{}, err
	}

	model, err := s.gateway.ModelFor(domain.EndpointNormalize)
	if err != nil {
		return domain.NormalizedItem{}, fmt.Errorf("normalize: %w", err)
	}

	name := prompt.Sanitize(in.Name, s.cfg.NormalizeInputMax)
	raw, err := s.invoke(ctx, domain.EndpointNormalize, model, domain.ModelRequest{
		Prompt:     s.composer.Normalize(name),
		JSONOutput: true,
	})
	if err != nil {
		return domain.NormalizedItem{}, err
	}
	return settle(s, domain.EndpointNormalize, decode.Normalized(raw, name))
}
