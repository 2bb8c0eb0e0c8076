package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/keepalive"
	_ "github.com/sglre6355/sgrmusic/internal/modules/music_player"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/sgrmusic
var version = "dev"

func main() {
	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Configure JSON logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	slog.Info("starting sgrmusic", "version", version)

	// Keep-alive endpoint for uptime pings
	var keepAlive *keepalive.Server
	if cfg.KeepAliveAddr != "" {
		keepAlive = keepalive.New(cfg.KeepAliveAddr)
		if err := keepAlive.Start(); err != nil {
			slog.Error("failed to start keep-alive server", "error", err)
			os.Exit(1)
		}
	}

	// Create and configure bot
	b := bot.NewBot(cfg)
	if err := b.LoadModules(); err != nil {
		slog.Error("failed to load modules", "error", err)
		os.Exit(1)
	}

	// Start bot
	if err := b.Start(); err != nil {
		slog.Error("failed to start bot", "error", err)
		os.Exit(1)
	}

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}
	if keepAlive != nil {
		if err := keepAlive.Stop(); err != nil {
			slog.Warn("failed to stop keep-alive server", "error", err)
		}
	}

	slog.Info("completed bot shutdown")
	os.Exit(0)
}
