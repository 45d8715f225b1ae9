package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Verdenroz/buff-ai/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Redis         RedisConfig
	AI            AIConfig
	MarketData    MarketDataConfig
	Search        SearchConfig
	Storage       StorageConfig
	TTS           TTSConfig
	Scraper       ScraperConfig
	Telegram      TelegramConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"buff-ai"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port         int           `envconfig:"HTTP_PORT" default:"8000"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"5m"` // chat streams stay open while the model writes
	CORSOrigins  []string      `envconfig:"HTTP_CORS_ORIGINS" default:"*"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIConfig selects the chat provider used by the router, specialists and synthesizer
type AIConfig struct {
	Provider   string        `envconfig:"AI_PROVIDER" default:"groq"`
	Model      string        `envconfig:"AI_MODEL"` // empty picks the provider default
	BaseURL    string        `envconfig:"AI_BASE_URL"`
	GroqKey    string        `envconfig:"GROQ_API_KEY"`
	OpenAIKey  string        `envconfig:"OPENAI_API_KEY"`
	GeminiKey  string        `envconfig:"GEMINI_API_KEY"`
	Timeout    time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`
	MaxRetries int           `envconfig:"AI_MAX_RETRIES" default:"2"`

	MaxToolTurns int `envconfig:"AI_MAX_TOOL_TURNS" default:"6"`

	RateLimitRPM         float64 `envconfig:"AI_RATE_LIMIT_RPM" default:"30"`
	RateLimitBurst       int     `envconfig:"AI_RATE_LIMIT_BURST" default:"5"`
	RateLimitDistributed bool    `envconfig:"AI_RATE_LIMIT_DISTRIBUTED" default:"false"`
}

// APIKey returns the key matching the selected provider
func (c AIConfig) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case "groq":
		return c.GroqKey
	case "openai":
		return c.OpenAIKey
	case "gemini":
		return c.GeminiKey
	default:
		return ""
	}
}

type MarketDataConfig struct {
	BaseURL string        `envconfig:"FINANCE_QUERY_URL" default:"https://finance-query.onrender.com"`
	Timeout time.Duration `envconfig:"FINANCE_QUERY_TIMEOUT" default:"20s"`
}

type SearchConfig struct {
	TavilyKey string        `envconfig:"TAVILY_API_KEY"`
	TavilyURL string        `envconfig:"TAVILY_URL" default:"https://api.tavily.com"`
	Timeout   time.Duration `envconfig:"TAVILY_TIMEOUT" default:"60s"`
}

type StorageConfig struct {
	Bucket     string        `envconfig:"S3_BUCKET" default:"ramhack"`
	Region     string        `envconfig:"S3_REGION" default:"us-east-2"`
	Endpoint   string        `envconfig:"S3_ENDPOINT"`
	AccessKey  string        `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey  string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	PresignTTL time.Duration `envconfig:"S3_PRESIGN_TTL" default:"1h"`
}

type TTSConfig struct {
	APIKey  string        `envconfig:"ELEVENLABS_API_KEY"`
	BaseURL string        `envconfig:"ELEVENLABS_URL" default:"https://api.elevenlabs.io"`
	VoiceID string        `envconfig:"ELEVENLABS_VOICE_ID" default:"pNInz6obpgDQGcFmaJgB"` // "Adam"
	Model   string        `envconfig:"ELEVENLABS_MODEL" default:"eleven_flash_v2_5"`
	Timeout time.Duration `envconfig:"ELEVENLABS_TIMEOUT" default:"60s"`
}

type ScraperConfig struct {
	Handle          string        `envconfig:"SCRAPER_HANDLE" default:"realDonaldTrump"`
	Author          string        `envconfig:"SCRAPER_AUTHOR" default:"Donald J. Trump"`
	AuthorKey       string        `envconfig:"SCRAPER_AUTHOR_KEY" default:"trump"`
	Lookback        time.Duration `envconfig:"SCRAPER_LOOKBACK" default:"720h"`
	MaxEmptyScrolls int           `envconfig:"SCRAPER_MAX_EMPTY_SCROLLS" default:"10"`
	Timeout         time.Duration `envconfig:"SCRAPER_TIMEOUT" default:"5m"`
	Headless        bool          `envconfig:"SCRAPER_HEADLESS" default:"true"`
}

type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// Enabled reports whether post alerts should be sent
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	PostIngestEnabled  bool          `envconfig:"WORKER_POST_INGEST_ENABLED" default:"true"`
	PostIngestInterval time.Duration `envconfig:"WORKER_POST_INGEST_INTERVAL" default:"1h"`
}

// Load reads configuration from the environment, loading .env first when present
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express
func (c *Config) Validate() error {
	switch strings.ToLower(c.AI.Provider) {
	case "groq", "openai", "gemini":
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported AI_PROVIDER %q", c.AI.Provider)
	}

	if c.AI.APIKey() == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "missing API key for AI provider %s", c.AI.Provider)
	}

	if c.AI.MaxToolTurns <= 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "AI_MAX_TOOL_TURNS must be positive, got %d", c.AI.MaxToolTurns)
	}

	return nil
}
