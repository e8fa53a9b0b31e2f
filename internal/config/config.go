package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// SMTP account used as the sending identity
	EmailAddress  string
	EmailPassword string
	SMTPHost      string
	SMTPPort      int

	// Google Sheets queue
	SpreadsheetID     string
	SheetName         string
	SheetID           int64
	GoogleCredentials string

	// Telegram
	TelegramToken    string
	WebhookToken     string
	PollWaitSeconds  int
	NotifyTimeout    time.Duration
	NotifyRatePerSec int
}

// Load reads configuration from the environment and validates the
// required values.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("PORT", "10000"),
		ReadTimeout: getDuration("READ_TIMEOUT", 10*time.Second),
		// Zero by default: a per-row delay runs inside the webhook
		// request and must not be cut off by a write deadline.
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 0),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		EmailAddress:  os.Getenv("EMAIL_ADDRESS"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getInt("SMTP_PORT", 465),

		SpreadsheetID:     os.Getenv("SPREADSHEET_ID"),
		SheetName:         os.Getenv("SHEET_NAME"),
		SheetID:           getInt64("SHEET_ID", 0),
		GoogleCredentials: os.Getenv("GOOGLE_CREDENTIALS"),

		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookToken:     os.Getenv("WEBHOOK_TOKEN"),
		PollWaitSeconds:  getInt("POLL_WAIT_SECONDS", 50),
		NotifyTimeout:    getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		NotifyRatePerSec: getInt("NOTIFY_RATE_PER_SEC", 25),
	}

	required := map[string]string{
		"EMAIL_ADDRESS":      cfg.EmailAddress,
		"EMAIL_PASSWORD":     cfg.EmailPassword,
		"SPREADSHEET_ID":     cfg.SpreadsheetID,
		"SHEET_NAME":         cfg.SheetName,
		"GOOGLE_CREDENTIALS": cfg.GoogleCredentials,
		"TELEGRAM_BOT_TOKEN": cfg.TelegramToken,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	return cfg, nil
}

// CredentialsJSON returns the service-account key material. GOOGLE_CREDENTIALS
// carries the raw key JSON; a value that does not look like JSON is treated
// as a path to the key file for deployments that mount it on disk.
func (c *Config) CredentialsJSON() ([]byte, error) {
	v := strings.TrimSpace(c.GoogleCredentials)
	if strings.HasPrefix(v, "{") {
		return []byte(v), nil
	}
	return os.ReadFile(v)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
