package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamestore/internal/model"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load(env(nil))
	s.Require().NoError(err)

	s.Equal(8080, cfg.Port)
	s.Equal(":8080", cfg.Addr())
	s.Equal(StorageMemory, cfg.StorageType)
	s.Equal(SessionsMemory, cfg.SessionStoreType)
	s.Equal(14*24*time.Hour, cfg.SessionDuration)
	s.Equal(model.Categories(model.DefaultCategories), cfg.Categories)
	s.Equal("katsonmirrinkolo", cfg.Payment.SID)
	s.Equal(587, cfg.Mail.Port)
	s.Equal(slog.LevelInfo, cfg.LogLevel)
}

func (s *ConfigSuite) TestOverrides() {
	cfg, err := Load(env(map[string]string{
		"HOST":             "127.0.0.1",
		"PORT":             "9000",
		"BASE_URL":         "https://store.example.com/",
		"STORAGE_TYPE":     "postgres",
		"DB_HOST":          "db",
		"DB_PORT":          "6543",
		"DB_AUTO_MIGRATE":  "false",
		"SESSION_STORE":    "redis",
		"REDIS_URL":        "redis://cache:6379/1",
		"SESSION_DURATION": "2h",
		"GAME_CATEGORIES":  "Puzzle, Strategy ,,Card",
		"LOG_LEVEL":        "debug",
		"LOG_FORMAT":       "text",
		"LOGIN_RATE":       "0.5",
		"LOGIN_BURST":      "3",
	}))
	s.Require().NoError(err)

	s.Equal("127.0.0.1:9000", cfg.Addr())
	s.Equal("https://store.example.com", cfg.BaseURL)
	s.Equal(StoragePostgres, cfg.StorageType)
	s.Equal("db", cfg.Postgres.Host)
	s.Equal(6543, cfg.Postgres.Port)
	s.False(cfg.Postgres.AutoMigrate)
	s.Equal(SessionsRedis, cfg.SessionStoreType)
	s.Equal("redis://cache:6379/1", cfg.RedisURL)
	s.Equal(2*time.Hour, cfg.SessionDuration)
	s.Equal(model.Categories{"Puzzle", "Strategy", "Card"}, cfg.Categories)
	s.Equal(slog.LevelDebug, cfg.LogLevel)
	s.Equal(LogFormatText, cfg.LogFormat)
	s.InDelta(0.5, cfg.LoginRate, 1e-9)
	s.Equal(3, cfg.LoginBurst)
}

func (s *ConfigSuite) TestParseErrorsAreCollected() {
	_, err := Load(env(map[string]string{
		"PORT":             "eighty",
		"SESSION_DURATION": "forever",
		"LOG_LEVEL":        "loud",
	}))
	s.Require().Error(err)
	s.Contains(err.Error(), "PORT")
	s.Contains(err.Error(), "SESSION_DURATION")
	s.Contains(err.Error(), "LOG_LEVEL")
}

func (s *ConfigSuite) TestValidate() {
	cases := []struct {
		name   string
		vars   map[string]string
		expect string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"relative base url", map[string]string{"BASE_URL": "/store"}, "BASE_URL"},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "sqlite"}, "STORAGE_TYPE"},
		{"unknown session store", map[string]string{"SESSION_STORE": "file"}, "SESSION_STORE"},
		{"redis without url", map[string]string{"SESSION_STORE": "redis", "REDIS_URL": ""}, "REDIS_URL"},
		{"empty secret", map[string]string{"PAYMENT_SECRET": ""}, "PAYMENT_SECRET"},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"zero burst", map[string]string{"LOGIN_BURST": "0"}, "LOGIN_BURST"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := Load(env(tc.vars))
			s.Require().Error(err)
			s.Contains(err.Error(), tc.expect)
		})
	}
}

func (s *ConfigSuite) TestJSONLogger() {
	var buf bytes.Buffer
	cfg := Default()
	cfg.NewLogger(&buf).Info("hello", "k", "v")

	var entry map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &entry))
	s.Equal("hello", entry["msg"])
	s.Equal("v", entry["k"])
}

func (s *ConfigSuite) TestTextLoggerRespectsLevel() {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = LogFormatText
	cfg.LogLevel = slog.LevelWarn

	logger := cfg.NewLogger(&buf)
	logger.Info("quiet")
	s.Empty(buf.String())
	logger.Warn("loud")
	s.Contains(buf.String(), "loud")
}

func TestFromEnvironmentReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GAMESTORE_TEST_UNUSED=1\nPAYMENT_SID=fromfile\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("GAMESTORE_TEST_UNUSED")
		os.Unsetenv("PAYMENT_SID")
	})

	cfg, err := FromEnvironment(path)
	require.NoError(t, err)
	assert.Equal(t, "fromfile", cfg.Payment.SID)
}

func TestFromEnvironmentMissingFileIsIgnored(t *testing.T) {
	_, err := FromEnvironment(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
