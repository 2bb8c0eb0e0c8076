package music_player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.AliasedModule      = (*MusicPlayerModule)(nil)
)

var errNoSession = errors.New("music_player requires a Discord session")

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers

	// Event-driven components
	eventBus            *infrastructure.ChannelEventBus
	playbackHandler     *application.PlaybackEventHandler
	notificationHandler *application.NotificationEventHandler

	// Bounds audio streams and event handlers
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.CommandHandler {
	if m.commandHandlers == nil {
		return nil
	}
	return m.commandHandlers.Handlers()
}

// Aliases returns the short prefixed spellings of the module's commands.
func (m *MusicPlayerModule) Aliases() map[string]string {
	return discord.Aliases()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.eventHandlers != nil {
				m.eventHandlers.HandleVoiceStateUpdate(s, event)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the queue engine to Discord, the catalogs and the audio pipeline.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errNoSession
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	// Infrastructure
	repo := infrastructure.NewMemoryRepository()
	voiceConnection := infrastructure.NewDiscordVoiceConnection(deps.Session)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	ytdlp := infrastructure.NewYTDLP(m.config.YTDLPPath)
	videos := infrastructure.NewYouTubeCatalog(
		m.ctx,
		m.config.YouTubeAPIKey,
		ytdlp,
		infrastructure.NewCatalogLimiter(m.config.CatalogRateLimit),
	)
	music := infrastructure.NewSpotifyCatalog(
		m.ctx,
		m.config.SpotifyClientID,
		m.config.SpotifyClientSecret,
		infrastructure.NewCatalogLimiter(m.config.CatalogRateLimit),
	)
	transport := infrastructure.NewFFmpegTransport(m.ctx, voiceConnection, ytdlp, m.config.FFmpegPath)

	timeout := discord.DefaultCommandTimeout
	if deps.Config != nil && deps.Config.CommandTimeout > 0 {
		timeout = deps.Config.CommandTimeout
	}

	// Use cases
	playback := usecases.NewPlaybackService(repo, transport, videos, m.eventBus, timeout)
	queue := usecases.NewQueueService(repo, playback)
	voiceChannel := usecases.NewVoiceChannelService(repo, voiceConnection, voiceState, playback)
	trackLoader := usecases.NewTrackLoaderService(videos, music)
	notificationChannel := usecases.NewNotificationChannelService(repo)

	// Application event handlers
	m.playbackHandler = application.NewPlaybackEventHandler(playback, m.eventBus)
	m.notificationHandler = application.NewNotificationEventHandler(
		repo,
		m.eventBus,
		notifier,
		userInfo,
	)
	m.playbackHandler.Start()
	m.notificationHandler.Start()

	// Presentation
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		trackLoader,
		notificationChannel,
		timeout,
	)

	m.eventHandlers = discord.NewEventHandlers(voiceChannel)

	slog.Info(
		"music_player module initialized",
		"youtube", videos.Enabled(),
		"spotify", music.Enabled(),
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Cancel first so running streams stop before the bus goes away
	if m.cancel != nil {
		m.cancel()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	return nil
}
