package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is built once in main and handed to the collaborators that need it.
// The conversation engine itself only sees Company.
type Config struct {
	TelegramToken  string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	SupportGroupID int64  `envconfig:"SUPPORT_GROUP_ID" default:"-5136080434"`

	// OpenRouter serves all chat completions, OpenAI serves Whisper.
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY" required:"true"`
	OpenRouterModel  string `envconfig:"OPENROUTER_MODEL" default:"gpt-4o"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"` // optional; sessions stay in memory when unset

	WebAppURL string `envconfig:"WEBAPP_URL" default:"http://localhost:8080"`
	HTTPPort  string `envconfig:"PORT" default:"8080"`
	StaticDir string `envconfig:"STATIC_DIR" default:"./static"`

	Log     Log
	Company Company
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

// Company identity and links interpolated into user-facing texts.
type Company struct {
	Name         string `envconfig:"COMPANY_NAME" default:"РусНейроСофт"`
	Description  string `envconfig:"COMPANY_DESCRIPTION" default:"Создаем интеллектуальные IT-решения для бизнеса"`
	Email        string `envconfig:"COMPANY_EMAIL" default:"info@rusneurosoft.ru"`
	Phone        string `envconfig:"COMPANY_PHONE"`
	Telegram     string `envconfig:"COMPANY_TELEGRAM"`
	Website      string `envconfig:"COMPANY_WEBSITE" default:"https://rusneurosoft.ru"`
	CasesLink    string `envconfig:"CASES_LINK" default:"https://rusneurosoft.ru/cases"`
	BookCallLink string `envconfig:"BOOK_CALL_LINK" default:"https://rusneurosoft.ru/book"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment configuration: %w", err)
	}
	return &cfg, nil
}
