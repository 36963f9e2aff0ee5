package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if err := c.Assistant.validate(); err != nil {
		return fmt.Errorf("assistant: %w", err)
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("rate_limit.per_minute must be > 0 (got %d)", c.RateLimit.PerMinute)
	}

	return nil
}

func (l *LLMConfig) validate() error {
	l.Provider = strings.ToLower(strings.TrimSpace(l.Provider))
	switch l.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("provider must be one of gemini, anthropic, openai (got %q)", l.Provider)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2] (got %v)", l.Temperature)
	}
	if l.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be > 0 (got %d)", l.MaxOutputTokens)
	}
	return nil
}

func (a *AssistantConfig) validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"chat_history_limit", a.ChatHistoryLimit},
		{"recent_lists", a.RecentLists},
		{"recent_purchases", a.RecentPurchases},
		{"recent_prices", a.RecentPrices},
		{"chat_top_items", a.ChatTopItems},
		{"suggest_top_items", a.SuggestTopItems},
		{"suggest_default_max", a.SuggestDefaultMax},
		{"suggest_max_cap", a.SuggestMaxCap},
		{"validate_max_cap", a.ValidateMaxCap},
		{"receipt_max_items", a.ReceiptMaxItems},
		{"normalize_input_max", a.NormalizeInputMax},
		{"chat_message_max", a.ChatMessageMax},
		{"prompt_max", a.PromptMax},
		{"receipt_text_max", a.ReceiptTextMax},
		{"receipt_image_max", a.ReceiptImageMax},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", p.name, p.value)
		}
	}

	if a.SuggestDefaultMax > a.SuggestMaxCap {
		return fmt.Errorf("suggest_default_max (%d) must not exceed suggest_max_cap (%d)", a.SuggestDefaultMax, a.SuggestMaxCap)
	}
	if strings.TrimSpace(a.Currency) == "" {
		return fmt.Errorf("currency is required")
	}
	return nil
}
