package config

import (
	"time"

	"github.com/heartmarshall/shopping-assistant/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Assistant AssistantConfig `yaml:"assistant"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id,X-User-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"90s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"SERVER_MAX_BODY_BYTES"   env-default:"10485760"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// Supported model providers.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// LLMConfig holds model backend settings. An empty APIKey is not a load
// error: every assistant request fails with a configuration error instead.
type LLMConfig struct {
	Provider        string  `yaml:"provider"          env:"LLM_PROVIDER"          env-default:"gemini"`
	APIKey          string  `yaml:"api_key"           env:"LLM_API_KEY"`
	Temperature     float64 `yaml:"temperature"       env:"LLM_TEMPERATURE"       env-default:"0.4"`
	MaxOutputTokens int     `yaml:"max_output_tokens" env:"LLM_MAX_OUTPUT_TOKENS" env-default:"2048"`

	// Per-endpoint model pinning. Empty values take the provider default.
	ModelChat      string `yaml:"model_chat"      env:"LLM_MODEL_CHAT"`
	ModelSuggest   string `yaml:"model_suggest"   env:"LLM_MODEL_SUGGEST"`
	ModelValidate  string `yaml:"model_validate"  env:"LLM_MODEL_VALIDATE"`
	ModelNormalize string `yaml:"model_normalize" env:"LLM_MODEL_NORMALIZE"`
	ModelReceipt   string `yaml:"model_receipt"   env:"LLM_MODEL_RECEIPT"`
}

// Models returns the endpoint to model identifier mapping, filling blanks
// with the provider default.
func (c LLMConfig) Models() map[domain.Endpoint]string {
	def := DefaultModel(c.Provider)
	pick := func(v string) string {
		if v == "" {
			return def
		}
		return v
	}
	return map[domain.Endpoint]string{
		domain.EndpointChat:      pick(c.ModelChat),
		domain.EndpointSuggest:   pick(c.ModelSuggest),
		domain.EndpointValidate:  pick(c.ModelValidate),
		domain.EndpointNormalize: pick(c.ModelNormalize),
		domain.EndpointReceipt:   pick(c.ModelReceipt),
	}
}

// DefaultModel returns the model used when an endpoint has none pinned.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-sonnet-4-5"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-2.5-flash"
	}
}

// AssistantConfig holds limits and market settings of the assistant pipeline.
type AssistantConfig struct {
	Locale   string `yaml:"locale"   env:"ASSISTANT_LOCALE"   env-default:"en-US"`
	Market   string `yaml:"market"   env:"ASSISTANT_MARKET"   env-default:"United States"`
	Currency string `yaml:"currency" env:"ASSISTANT_CURRENCY" env-default:"USD"`

	ChatHistoryLimit int `yaml:"chat_history_limit" env:"ASSISTANT_CHAT_HISTORY_LIMIT" env-default:"20"`
	RecentLists      int `yaml:"recent_lists"       env:"ASSISTANT_RECENT_LISTS"       env-default:"5"`
	RecentPurchases  int `yaml:"recent_purchases"   env:"ASSISTANT_RECENT_PURCHASES"   env-default:"50"`
	RecentPrices     int `yaml:"recent_prices"      env:"ASSISTANT_RECENT_PRICES"      env-default:"50"`
	ChatTopItems     int `yaml:"chat_top_items"     env:"ASSISTANT_CHAT_TOP_ITEMS"     env-default:"5"`
	SuggestTopItems  int `yaml:"suggest_top_items"  env:"ASSISTANT_SUGGEST_TOP_ITEMS"  env-default:"10"`

	SuggestDefaultMax int `yaml:"suggest_default_max" env:"ASSISTANT_SUGGEST_DEFAULT_MAX" env-default:"10"`
	SuggestMaxCap     int `yaml:"suggest_max_cap"     env:"ASSISTANT_SUGGEST_MAX_CAP"     env-default:"50"`
	ValidateMaxCap    int `yaml:"validate_max_cap"    env:"ASSISTANT_VALIDATE_MAX_CAP"    env-default:"100"`
	ReceiptMaxItems   int `yaml:"receipt_max_items"   env:"ASSISTANT_RECEIPT_MAX_ITEMS"   env-default:"100"`

	NormalizeInputMax int `yaml:"normalize_input_max" env:"ASSISTANT_NORMALIZE_INPUT_MAX" env-default:"200"`
	ChatMessageMax    int `yaml:"chat_message_max"    env:"ASSISTANT_CHAT_MESSAGE_MAX"    env-default:"2000"`
	PromptMax         int `yaml:"prompt_max"          env:"ASSISTANT_PROMPT_MAX"          env-default:"500"`
	ReceiptTextMax    int `yaml:"receipt_text_max"    env:"ASSISTANT_RECEIPT_TEXT_MAX"    env-default:"8000"`
	ReceiptImageMax   int `yaml:"receipt_image_max"   env:"ASSISTANT_RECEIPT_IMAGE_MAX"   env-default:"5242880"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-client request limits for assistant endpoints.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"          env:"RATE_LIMIT_ENABLED"          env-default:"true"`
	PerMinute       int           `yaml:"per_minute"       env:"RATE_LIMIT_PER_MINUTE"       env-default:"30"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
}
