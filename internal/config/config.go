package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/storage/postgres"
)

// Backend names
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	SessionsMemory  = "memory"
	SessionsRedis   = "redis"
)

// Log formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the process configuration. It is built once at startup and not modified afterwards.
type Config struct {
	Host    string
	Port    int
	BaseURL string

	StorageType string
	Postgres    postgres.Config

	SessionStoreType string
	RedisURL         string
	SessionDuration  time.Duration

	Categories model.Categories

	Payment PaymentConfig
	Mail    MailConfig

	LogLevel  slog.Level
	LogFormat string

	// LoginRate is the sustained number of login attempts allowed per client per second
	LoginRate  float64
	LoginBurst int
}

// PaymentConfig holds the payment service settings
type PaymentConfig struct {
	SID    string
	Secret string
	URL    string
}

// MailConfig holds SMTP settings. An empty Host means mail is only logged.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Default returns the configuration used when no environment variables are set
func Default() Config {
	return Config{
		Host:             "",
		Port:             8080,
		BaseURL:          "http://localhost:8080",
		StorageType:      StorageMemory,
		SessionStoreType: SessionsMemory,
		RedisURL:         "redis://localhost:6379",
		SessionDuration:  14 * 24 * time.Hour,
		Categories:       model.Categories(model.DefaultCategories),
		Postgres:         postgres.DefaultConfig(),
		Payment: PaymentConfig{
			SID:    "katsonmirrinkolo",
			Secret: "d0a292a5c6f3b7a6a081860448cf21c7",
			URL:    "https://simplepayments.herokuapp.com/pay/",
		},
		Mail: MailConfig{
			Port: 587,
			From: "gamestore@localhost",
		},
		LogLevel:   slog.LevelInfo,
		LogFormat:  LogFormatJSON,
		LoginRate:  1,
		LoginBurst: 5,
	}
}

// LookupFunc reads one variable. os.LookupEnv is the usual implementation.
type LookupFunc func(key string) (string, bool)

// FromEnvironment loads the optional .env files, then reads the process environment.
// Variables already set in the environment take precedence over .env values.
func FromEnvironment(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return Load(os.LookupEnv)
}

// Load builds a Config from defaults overridden by the given variables
func Load(lookup LookupFunc) (Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	cfg.Host = r.string("HOST", cfg.Host)
	cfg.Port = r.int("PORT", cfg.Port)
	cfg.BaseURL = strings.TrimRight(r.string("BASE_URL", cfg.BaseURL), "/")

	cfg.StorageType = r.string("STORAGE_TYPE", cfg.StorageType)
	cfg.Postgres.Host = r.string("DB_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = r.int("DB_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = r.string("DB_USER", cfg.Postgres.User)
	cfg.Postgres.Password = r.string("DB_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Name = r.string("DB_NAME", cfg.Postgres.Name)
	cfg.Postgres.SSLMode = r.string("DB_SSLMODE", cfg.Postgres.SSLMode)
	cfg.Postgres.AutoMigrate = r.bool("DB_AUTO_MIGRATE", cfg.Postgres.AutoMigrate)

	cfg.SessionStoreType = r.string("SESSION_STORE", cfg.SessionStoreType)
	cfg.RedisURL = r.string("REDIS_URL", cfg.RedisURL)
	cfg.SessionDuration = r.duration("SESSION_DURATION", cfg.SessionDuration)

	if raw, ok := r.lookup("GAME_CATEGORIES"); ok && strings.TrimSpace(raw) != "" {
		cfg.Categories = splitList(raw)
	}

	cfg.Payment.SID = r.string("PAYMENT_SID", cfg.Payment.SID)
	cfg.Payment.Secret = r.string("PAYMENT_SECRET", cfg.Payment.Secret)
	cfg.Payment.URL = r.string("PAYMENT_URL", cfg.Payment.URL)

	cfg.Mail.Host = r.string("EMAIL_HOST", cfg.Mail.Host)
	cfg.Mail.Port = r.int("EMAIL_PORT", cfg.Mail.Port)
	cfg.Mail.User = r.string("EMAIL_HOST_USER", cfg.Mail.User)
	cfg.Mail.Password = r.string("EMAIL_HOST_PASSWORD", cfg.Mail.Password)
	cfg.Mail.From = r.string("EMAIL_FROM", cfg.Mail.From)

	cfg.LogLevel = r.level("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = r.string("LOG_FORMAT", cfg.LogFormat)

	cfg.LoginRate = r.float("LOGIN_RATE", cfg.LoginRate)
	cfg.LoginBurst = r.int("LOGIN_BURST", cfg.LoginBurst)

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid or missing setting
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d is out of range", c.Port))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL: %q is not an absolute URL", c.BaseURL))
	}

	switch c.StorageType {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.Host == "" || c.Postgres.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE: must be %q or %q, got %q", StorageMemory, StoragePostgres, c.StorageType))
	}

	switch c.SessionStoreType {
	case SessionsMemory:
	case SessionsRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE: must be %q or %q, got %q", SessionsMemory, SessionsRedis, c.SessionStoreType))
	}

	if c.SessionDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION must be positive"))
	}
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("GAME_CATEGORIES must not be empty"))
	}
	if c.Payment.SID == "" || c.Payment.Secret == "" {
		errs = append(errs, errors.New("PAYMENT_SID and PAYMENT_SECRET are required"))
	}
	if c.Mail.From == "" {
		errs = append(errs, errors.New("EMAIL_FROM is required"))
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatText {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat))
	}
	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE and LOGIN_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(raw string) model.Categories {
	var out model.Categories
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// reader reads typed variables and collects parse errors
type reader struct {
	lookup LookupFunc
	errs   []error
}

func (r *reader) string(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (r *reader) level(key string, def slog.Level) slog.Level {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a log level", key, v))
		return def
	}
	return level
}
