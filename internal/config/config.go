package config

import (
	"os"
	"strconv"
	"time"
)

// Значения по умолчанию
const (
	DefaultNamespace             = "examportal"
	DefaultQuotaBytes            = 5 * 1024 * 1024
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 20
)

// Config represents the configuration of the portal
type Config struct {
	// Storage
	DBType      string
	DBPath      string
	DatabaseURL string
	Namespace   string
	QuotaBytes  int

	// Presentation timings and pages
	AuthRedirectDelay time.Duration
	MessageTimeout    time.Duration
	LoginPage         string
	HomePage          string

	// Reminders
	NotificationStartHour int
	NotificationEndHour   int
	ReminderWindow        time.Duration
	TelegramToken         string
	TelegramChatID        int64

	LogLevel string
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DBType:                "sqlite",
		DBPath:                "data/examportal.db",
		Namespace:             DefaultNamespace,
		QuotaBytes:            DefaultQuotaBytes,
		AuthRedirectDelay:     2 * time.Second,
		MessageTimeout:        4 * time.Second,
		LoginPage:             "login.html",
		HomePage:              "index.html",
		NotificationStartHour: DefaultNotificationStartHour,
		NotificationEndHour:   DefaultNotificationEndHour,
		ReminderWindow:        24 * time.Hour,
		LogLevel:              "info",
	}
}

// Load builds the configuration from environment variables on top of Default.
// Call godotenv.Load before Load to pick up a .env file.
func Load() *Config {
	cfg := Default()

	cfg.DBType = getenv("DB_TYPE", cfg.DBType)
	cfg.DBPath = getenv("DB_PATH", cfg.DBPath)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Namespace = getenv("STORAGE_NAMESPACE", cfg.Namespace)
	cfg.QuotaBytes = getenvInt("STORAGE_QUOTA_BYTES", cfg.QuotaBytes)

	cfg.AuthRedirectDelay = getenvDuration("AUTH_REDIRECT_DELAY", cfg.AuthRedirectDelay)
	cfg.MessageTimeout = getenvDuration("MESSAGE_TIMEOUT", cfg.MessageTimeout)
	cfg.LoginPage = getenv("LOGIN_PAGE", cfg.LoginPage)
	cfg.HomePage = getenv("HOME_PAGE", cfg.HomePage)

	// Часы уведомлений принимаются только в диапазоне 0-23
	if h := getenvInt("NOTIFICATION_START_HOUR", -1); h >= 0 && h <= 23 {
		cfg.NotificationStartHour = h
	}
	if h := getenvInt("NOTIFICATION_END_HOUR", -1); h >= 0 && h <= 23 {
		cfg.NotificationEndHour = h
	}
	cfg.ReminderWindow = getenvDuration("REMINDER_WINDOW", cfg.ReminderWindow)
	cfg.TelegramToken = getenv("TELEGRAM_BOT_TOKEN", "")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}

	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	return cfg
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
