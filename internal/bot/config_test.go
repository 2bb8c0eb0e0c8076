package bot

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_WithRequiredValues(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token-123")
	t.Setenv("CLIENT_ID", "987654321")
	t.Setenv("PREFIX", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "test-token-123" {
		t.Errorf("expected token %q, got %q", "test-token-123", cfg.DiscordToken)
	}
	if cfg.ClientID != "987654321" {
		t.Errorf("expected client id %q, got %q", "987654321", cfg.ClientID)
	}
	if cfg.Prefix != "!" {
		t.Errorf("expected default prefix %q, got %q", "!", cfg.Prefix)
	}
	if cfg.CommandTimeout != 30*time.Second {
		t.Errorf("expected default command timeout 30s, got %v", cfg.CommandTimeout)
	}
}

func TestLoadConfig_CustomPrefix(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("CLIENT_ID", "1")
	t.Setenv("PREFIX", "?")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Prefix != "?" {
		t.Errorf("expected prefix %q, got %q", "?", cfg.Prefix)
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		clientID string
	}{
		{name: "empty token", token: "", clientID: "1"},
		{name: "empty client id", token: "test-token", clientID: ""},
		{name: "both empty", token: "", clientID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", tt.token)
			t.Setenv("CLIENT_ID", tt.clientID)

			_, err := LoadConfig()
			if err == nil {
				t.Error("expected error for missing required value, got nil")
			}
		})
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			if got := cfg.SlogLevel(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
