package config

import (
	"fmt"
	"time"

	"github.com/ad/tonblast-bot/internal/domain"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	RunModeWebhook = "webhook"
	RunModePolling = "polling"
)

// Config holds application configuration
type Config struct {
	TelegramToken   string        `env:"TELEGRAM_TOKEN,required,notEmpty" validate:"required"`
	GameURL         string        `env:"GAME_URL" envDefault:"https://ton-blast-game.vercel.app" validate:"required,url"`
	KeyboardStyle   string        `env:"KEYBOARD_STYLE" envDefault:"inline" validate:"oneof=inline reply"`
	RunMode         string        `env:"RUN_MODE" envDefault:"webhook" validate:"oneof=webhook polling"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
	WebhookSecret   string        `env:"WEBHOOK_SECRET"`
	BotUsername     string        `env:"BOT_USERNAME"` // resolved with getMe when empty
	TelemetryDBPath string        `env:"TELEMETRY_DB_PATH"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// Load loads configuration from environment variables.
// TELEGRAM_TOKEN has no default: startup fails without it.
func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Style returns the keyboard style for replies
func (c *Config) Style() domain.KeyboardStyle {
	if c.KeyboardStyle == string(domain.KeyboardReply) {
		return domain.KeyboardReply
	}
	return domain.KeyboardInline
}
