package config

import (
	"cerebmod/internal/db"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultLLMModel = "deepseek/deepseek-r1:free"

type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    slog.Level
	LogFormat   string

	LLMBaseURL string
	LLMToken   string
	LLMModel   string
}

// LoadDotEnv reads .env into the process environment if one exists.
// Variables that are already set win over the file.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Info("no .env file found, reading configuration from the environment")
	}
}

// FromEnv builds a Config from the process environment.
func FromEnv() (*Config, error) {
	return Build(os.Getenv)
}

// Build reads every setting through getenv and applies defaults.
func Build(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL: getenv("DATABASE_URL"),
		Port:        getenv("PORT"),
		LogFormat:   strings.ToLower(getenv("LOG_FORMAT")),
		LLMBaseURL:  strings.TrimRight(getenv("LLM_BASE_URL"), "/"),
		LLMToken:    getenv("LLM_TOKEN"),
		LLMModel:    getenv("LLM_MODEL"),
	}
	if cfg.DatabaseURL == "" {
		return nil, db.ErrNoDatabaseURL
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultLLMModel
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q", cfg.LogFormat)
	}

	level, err := ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	return cfg, nil
}

func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.New("unknown LOG_LEVEL " + s)
	}
	return level, nil
}

// Logger builds the process logger described by the config.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
