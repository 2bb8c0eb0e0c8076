package bot

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken   string        `env:"DISCORD_TOKEN,notEmpty"`
	ClientID       string        `env:"CLIENT_ID,notEmpty"`
	Prefix         string        `env:"PREFIX"          envDefault:"!"`
	LogLevel       string        `env:"LOG_LEVEL"       envDefault:"info"`
	KeepAliveAddr  string        `env:"KEEPALIVE_ADDR"  envDefault:":3000"`
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" envDefault:"30s"`
}

// LoadConfig loads configuration from environment variables.
// Values from a .env file in the working directory are applied first when the file exists;
// variables already set in the environment take precedence.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = "!"
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
