package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session tokens issued in exchange for mini-app init data
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Telegram bot used to deliver reminder alerts
	TelegramBotToken string
	TelegramAPIURL   string
	TelegramTimeout  time.Duration
	ReminderInterval time.Duration
	ReminderTimezone string
	LogRetentionDays int

	// Admin
	AdminToken string

	// Server
	Port        string
	CORSOrigins string
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Info("env file loaded", "path", p)
		return
	}
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "clientdesk"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "24h"), 24*time.Hour),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", getEnv("BOT_SECRET", "")),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		TelegramTimeout:  parseDuration(getEnv("TELEGRAM_TIMEOUT", "10s"), 10*time.Second),
		ReminderInterval: parseDuration(getEnv("REMINDER_POLL_INTERVAL", "60s"), time.Minute),
		ReminderTimezone: getEnv("REMINDER_TIMEZONE", "Local"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Location resolves ReminderTimezone. Reminder dates and times carry no zone
// of their own and are interpreted in this location.
func (c *Config) Location() *time.Location {
	if c.ReminderTimezone == "" || c.ReminderTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		slog.Warn("unknown reminder timezone, using local", "timezone", c.ReminderTimezone, "error", err)
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
