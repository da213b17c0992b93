package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrConfiguration = errors.New("configuration error")

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"

	NotifierPushover = "pushover"
	NotifierTelegram = "telegram"
)

type Config struct {
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SQLitePath string

	Notifier string

	PushoverToken  string
	PushoverUser   string
	PushoverDevice string

	TelegramToken    string
	TelegramChat     string
	TelegramThreadID *int

	DMVBranch  string
	DMVService string

	HTTPTimeout time.Duration
	LogLevel    string
}

// Load reads the process environment, seeded from envFile when it exists.
// Every missing required variable is reported at once.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg := Config{
		StoreDriver:    strings.ToLower(envOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBUser:         os.Getenv("DB_USERNAME"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         envOrDefault("DB_DATABASE", "monalert"),
		DBSSLMode:      envOrDefault("DB_SSLMODE", "disable"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		Notifier:       strings.ToLower(envOrDefault("NOTIFIER", NotifierPushover)),
		PushoverToken:  os.Getenv("PUSHOVER_TOKEN"),
		PushoverUser:   os.Getenv("PUSHOVER_USER"),
		PushoverDevice: os.Getenv("PUSHOVER_DEVICE"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChat:   os.Getenv("TELEGRAM_CHAT_ID"),
		DMVBranch:      os.Getenv("DMV_BRANCH"),
		DMVService:     os.Getenv("DMV_SERVICE"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
	}

	threadID, err := envOrIntPtr("TELEGRAM_CHAT_THREAD_ID")
	if err != nil {
		return cfg, err
	}
	cfg.TelegramThreadID = threadID

	timeout, err := envOrDuration("HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.HTTPTimeout = timeout

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		require("DB_HOST", c.DBHost)
		require("DB_PORT", c.DBPort)
		require("DB_USERNAME", c.DBUser)
		require("DB_PASSWORD", c.DBPassword)
		if c.DBPort != "" {
			if _, err := strconv.Atoi(c.DBPort); err != nil {
				return fmt.Errorf("%w: invalid DB_PORT %q", ErrConfiguration, c.DBPort)
			}
		}
	case StoreDriverSQLite:
		require("SQLITE_PATH", c.SQLitePath)
	case StoreDriverMemory:
	default:
		return fmt.Errorf("%w: unknown STORE_DRIVER %q", ErrConfiguration, c.StoreDriver)
	}

	switch c.Notifier {
	case NotifierPushover:
		require("PUSHOVER_TOKEN", c.PushoverToken)
		require("PUSHOVER_USER", c.PushoverUser)
		require("PUSHOVER_DEVICE", c.PushoverDevice)
	case NotifierTelegram:
		require("TELEGRAM_BOT_TOKEN", c.TelegramToken)
		require("TELEGRAM_CHAT_ID", c.TelegramChat)
	default:
		return fmt.Errorf("%w: unknown NOTIFIER %q", ErrConfiguration, c.Notifier)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing environment variable %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

func (c Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envOrIntPtr(key string) (*int, error) {
	val := os.Getenv(key)
	if val == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %w", ErrConfiguration, key, err)
	}
	return &parsed, nil
}

func envOrDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %w", ErrConfiguration, key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrConfiguration, key)
	}
	return parsed, nil
}
