package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/api"
	"github.com/relaybot/sheetmail/internal/api/handler"
	"github.com/relaybot/sheetmail/internal/config"
	"github.com/relaybot/sheetmail/internal/mailer"
	"github.com/relaybot/sheetmail/internal/metrics"
	"github.com/relaybot/sheetmail/internal/processor"
	"github.com/relaybot/sheetmail/internal/sheetqueue"
	"github.com/relaybot/sheetmail/internal/telegram"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	creds, err := cfg.CredentialsJSON()
	if err != nil {
		logger.Fatal("failed to load service account key", zap.Error(err))
	}

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.NotifyTimeout})
	if err != nil {
		logger.Fatal("failed to authenticate telegram bot", zap.Error(err))
	}
	logger.Info("telegram bot authenticated", zap.String("username", bot.Self.UserName))

	notifier := telegram.NewNotifier(bot, cfg.NotifyRatePerSec, cfg.NotifyTimeout, logger, m.NotifyFailures.Inc)
	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword, logger)
	queues := sheetqueue.GoogleFactory(creds, cfg.SpreadsheetID, cfg.SheetName, cfg.SheetID)

	onSent, onFailed, onEmpty := m.ProcessorHooks()
	proc := processor.New(queues, sender, notifier, cfg.EmailAddress, nil, logger, processor.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
		OnEmpty:  onEmpty,
	})

	// ---- HTTP server ----
	wh := handler.NewWebhookHandler(cfg.WebhookToken, proc, notifier, logger, m.TriggerHook("webhook"))
	router := api.NewRouter(wh, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("webhook server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
