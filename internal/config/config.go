package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	DatabaseURI     string `env:"DATABASE_URI" env-required:"true"`
	HTTPAddr        string `env:"HTTP_ADDR" env-default:":8080"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	AIAPIKey        string `env:"AI_API_KEY"`
	AIBaseURL       string `env:"AI_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	AIModel         string `env:"AI_MODEL" env-default:"openai/gpt-4o-mini"`
	LogLevel        string `env:"LOG_LEVEL" env-default:"info"`
	DefaultTimezone string `env:"DEFAULT_TIMEZONE" env-default:"UTC"`
	RefreshCron     string `env:"AGGREGATE_REFRESH_CRON" env-default:"*/30 * * * *"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	schedule, err := cron.ParseStandard(c.RefreshCron)
	if err != nil {
		return fmt.Errorf("invalid AGGREGATE_REFRESH_CRON %q: %w", c.RefreshCron, err)
	}
	if schedule.Next(time.Now()).IsZero() {
		return fmt.Errorf("invalid AGGREGATE_REFRESH_CRON %q: never fires", c.RefreshCron)
	}
	return nil
}

// BotEnabled reports whether a Telegram token is configured.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// AIEnabled reports whether an AI API key is configured.
func (c *Config) AIEnabled() bool {
	return c.AIAPIKey != ""
}
