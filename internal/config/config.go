package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	// BackendMemory keeps records for the life of the process only.
	BackendMemory = "memory"
)

// Draft providers.
const (
	ProviderChat   = "chat"
	ProviderGemini = "gemini"
)

const (
	defaultLLMEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel    = "openai/gpt-4o"
	defaultGeminiModel = "gemini-1.5-flash"
)

// Config holds the configuration for the application.
type Config struct {
	DataDir      string `yaml:"data_dir"`
	StoreBackend string `yaml:"store_backend"`
	DatabasePath string `yaml:"database_path"`

	// Draft generation
	DraftProvider string `yaml:"draft_provider"`
	LLMEndpoint   string `yaml:"llm_endpoint"`
	LLMAPIKey     string `yaml:"llm_api_key"`
	LLMModel      string `yaml:"llm_model"`
	LLMReferer    string `yaml:"llm_referer"`
	LLMTitle      string `yaml:"llm_title"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`

	ApproverSecret string `yaml:"approver_secret"`
	HTTPAddr       string `yaml:"http_addr"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		DataDir:       "data",
		StoreBackend:  BackendFile,
		DatabasePath:  "data/farm.db",
		DraftProvider: ProviderChat,
		LLMEndpoint:   defaultLLMEndpoint,
		LLMModel:      defaultLLMModel,
		LLMTitle:      "Farm Management System",
		GeminiModel:   defaultGeminiModel,
		HTTPAddr:      ":8080",
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// NewFromEnv creates a new Config object from the defaults, an optional YAML
// file named by FARM_CONFIG, a .env file and the process environment, in
// increasing order of precedence.
func NewFromEnv() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("FARM_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.DraftProvider, "DRAFT_PROVIDER")
	setString(&cfg.LLMEndpoint, "LLM_ENDPOINT")
	setString(&cfg.LLMAPIKey, "OPENROUTER_API_KEY")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMReferer, "LLM_REFERER")
	setString(&cfg.LLMTitle, "LLM_TITLE")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.ApproverSecret, "APPROVER_SECRET")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	if raw := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); raw != "" {
		ids, err := parseIDs(raw)
		if err != nil {
			return nil, err
		}
		cfg.TelegramAllowedUserIDs = ids
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q, %q or %q, got %q", BackendFile, BackendSQLite, BackendMemory, c.StoreBackend)
	}
	switch c.DraftProvider {
	case ProviderChat, ProviderGemini:
	default:
		return fmt.Errorf("DRAFT_PROVIDER must be %q or %q, got %q", ProviderChat, ProviderGemini, c.DraftProvider)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
