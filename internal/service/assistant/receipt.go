package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/aggregate"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/decode"
	"github.com/heartmarshall/shopping-assistant/internal/service/assistant/prompt"
)

// ParseReceipt extracts purchased items from receipt text, a receipt photo,
// or both. Totals are recomputed from the extracted lines.
func (s *Service) ParseReceipt(ctx context.Context, in ReceiptInput) (domain.Receipt, error) {
	if err := in.Validate(s.cfg.ReceiptImageMax); err != nil {
		return domain.Receipt{}, err
	}
	text := prompt.CleanReceiptText(in.Text)
	if text == "" && len(in.Image) == 0 {
		return domain.Receipt{}, domain.NewValidationError("text", "no readable text")
	}
	maxResults := resolveMax(in.MaxResults, s.cfg.ReceiptMaxItems, s.cfg.ReceiptMaxItems)

	model, err := s.gateway.ModelFor(domain.EndpointReceipt)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("receipt: %w", err)
	}

	req := domain.ModelRequest{
		Prompt: s.composer.Receipt(prompt.ReceiptInput{
			Text:       text,
			HasImage:   len(in.Image) > 0,
			MaxResults: maxResults,
		}),
		JSONOutput: true,
	}
	if len(in.Image) > 0 {
		req.Attachments = []domain.Attachment{{MIMEType: in.mimeType(), Data: in.Image}}
	}

	raw, err := s.invoke(ctx, domain.EndpointReceipt, model, req)
	if err != nil {
		return domain.Receipt{}, err
	}

	rcpt, err := settle(s, domain.EndpointReceipt, decode.Receipt(raw, maxResults))
	if err != nil {
		return domain.Receipt{}, err
	}
	if rcpt.ReportedTotal.Valid && !rcpt.ReportedTotal.Decimal.Equal(rcpt.Total) {
		s.log.Debug("receipt total differs from model total",
			slog.String("computed", aggregate.Money(rcpt.Total)),
			slog.String("reported", aggregate.Money(rcpt.ReportedTotal.Decimal)),
			slog.Int("items", len(rcpt.Items)),
		)
	}
	return rcpt, nil
}
