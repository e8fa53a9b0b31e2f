package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/api"
	"github.com/relaybot/sheetmail/internal/config"
	"github.com/relaybot/sheetmail/internal/mailer"
	"github.com/relaybot/sheetmail/internal/metrics"
	"github.com/relaybot/sheetmail/internal/poller"
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

	// Two bot clients against the same token: notifications need a short
	// round-trip bound, the long-poll fetch must outlive the hold time.
	notifyBot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: cfg.NotifyTimeout})
	if err != nil {
		logger.Fatal("failed to authenticate telegram bot", zap.Error(err))
	}
	logger.Info("telegram bot authenticated", zap.String("username", notifyBot.Self.UserName))

	pollTimeout := time.Duration(cfg.PollWaitSeconds+15) * time.Second
	pollBot, err := tgbotapi.NewBotAPIWithClient(cfg.TelegramToken, tgbotapi.APIEndpoint,
		&http.Client{Timeout: pollTimeout})
	if err != nil {
		logger.Fatal("failed to authenticate telegram bot", zap.Error(err))
	}

	notifier := telegram.NewNotifier(notifyBot, cfg.NotifyRatePerSec, cfg.NotifyTimeout, logger, m.NotifyFailures.Inc)
	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailAddress, cfg.EmailPassword, logger)
	queues := sheetqueue.GoogleFactory(creds, cfg.SpreadsheetID, cfg.SheetName, cfg.SheetID)

	onSent, onFailed, onEmpty := m.ProcessorHooks()
	proc := processor.New(queues, sender, notifier, cfg.EmailAddress, nil, logger, processor.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
		OnEmpty:  onEmpty,
	})

	// ---- polling loop ----
	pollCtx, cancelPoll := context.WithCancel(context.Background())
	defer cancelPoll()

	p := poller.New(pollBot, proc, notifier, cfg.PollWaitSeconds, logger,
		m.PollErrors.Inc, m.TriggerHook("poll"))
	done := make(chan struct{})
	go func() {
		p.Run(pollCtx)
		close(done)
	}()

	// ---- HTTP server (health and metrics only) ----
	router := api.NewRouter(nil, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("poller sidecar server starting", zap.String("addr", srv.Addr))
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

	// The loop may sit inside a long-poll fetch for up to the hold time;
	// give it until the shutdown deadline, then exit regardless.
	cancelPoll()
	select {
	case <-done:
		logger.Info("poller stopped cleanly")
	case <-shutdownCtx.Done():
		logger.Warn("poller still inside a long-poll fetch, exiting anyway")
	}
}
