package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ad/tonblast-bot/internal/bot"
	"github.com/ad/tonblast-bot/internal/config"
	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"
	"github.com/ad/tonblast-bot/internal/logger"
	"github.com/ad/tonblast-bot/internal/storage"
	"github.com/ad/tonblast-bot/internal/webhook"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logLevel)
	if cfg.LogFormat == "json" {
		log = logger.NewJSON(logLevel)
	}
	log.Info("Starting TON Blast bot", "log_level", cfg.LogLevel, "run_mode", cfg.RunMode, "keyboard_style", cfg.KeyboardStyle)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("Bot stopped successfully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var journal domain.TelemetryJournal
	if cfg.TelemetryDBPath != "" {
		db, queue, err := storage.Open(cfg.TelemetryDBPath)
		if err != nil {
			return fmt.Errorf("telemetry journal: %w", err)
		}
		defer func() { _ = db.Close() }()
		defer queue.Close()

		journal = storage.NewTelemetryRepository(queue)
		log.Info("Telemetry journal opened", "path", cfg.TelemetryDBPath)
	}

	catalog, err := locale.NewCatalog()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}

	resolver, err := bot.NewResolver(catalog, cfg.GameURL, cfg.Style())
	if err != nil {
		return err
	}

	// The handler is created after the client, which the default handler closes over
	var handler *bot.BotHandler

	opts := []tgbot.Option{
		tgbot.WithHTTPClient(cfg.DeliveryTimeout, &http.Client{Timeout: cfg.DeliveryTimeout}),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if handler != nil {
				handler.Handle(ctx, b, update)
			}
		}),
	}

	b, err := tgbot.New(cfg.TelegramToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	log.Info("Telegram bot created")

	username := cfg.BotUsername
	if username == "" {
		me, err := b.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("get bot info: %w", err)
		}
		username = me.Username
	}
	log.Info("Bot info retrieved", "username", username)

	router := bot.NewRouter(resolver, domain.NewReferralService(username), bot.NewSender(b, log), log)
	handler = bot.NewBotHandler(bot.NewClassifier(cfg.Style(), resolver), router, log)
	sink := domain.NewTelemetrySink(journal, log)

	g, gCtx := errgroup.WithContext(ctx)

	// The HTTP server also carries /stats and /healthz in polling mode
	g.Go(func() error {
		return webhook.NewServer(cfg.HTTPAddr, handler, sink, cfg.WebhookSecret, cfg.DeliveryTimeout, log).Run(gCtx)
	})

	if cfg.RunMode == config.RunModePolling {
		g.Go(func() error {
			if _, err := b.DeleteWebhook(gCtx, &tgbot.DeleteWebhookParams{}); err != nil {
				log.Warn("Failed to delete webhook before polling", "error", err)
			}

			log.Info("Starting bot polling")
			b.Start(gCtx)

			if gCtx.Err() == nil {
				return errors.New("telegram polling stopped unexpectedly")
			}
			return nil
		})
	}

	log.Info("Bot is running. Press Ctrl+C to stop.")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
