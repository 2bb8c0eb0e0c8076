package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/bot"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// DefaultCommandTimeout bounds a single command when no timeout is configured.
const DefaultCommandTimeout = 30 * time.Second

// searchResultLimit is how many results the search command lists.
const searchResultLimit = 5

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel        *usecases.VoiceChannelService
	playback            *usecases.PlaybackService
	queue               *usecases.QueueService
	trackLoader         *usecases.TrackLoaderService
	notificationChannel *usecases.NotificationChannelService
	timeout             time.Duration
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	trackLoader *usecases.TrackLoaderService,
	notificationChannel *usecases.NotificationChannelService,
	timeout time.Duration,
) *CommandHandlers {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &CommandHandlers{
		voiceChannel:        voiceChannel,
		playback:            playback,
		queue:               queue,
		trackLoader:         trackLoader,
		notificationChannel: notificationChannel,
		timeout:             timeout,
	}
}

// Handlers maps command names to their handlers.
func (h *CommandHandlers) Handlers() map[string]bot.CommandHandler {
	return map[string]bot.CommandHandler{
		"play":       h.HandlePlay,
		"search":     h.HandleSearch,
		"skip":       h.HandleSkip,
		"pause":      h.HandlePause,
		"resume":     h.HandleResume,
		"stop":       h.HandleStop,
		"queue":      h.HandleQueue,
		"nowplaying": h.HandleNowPlaying,
		"join":       h.HandleJoin,
		"leave":      h.HandleLeave,
		"help":       h.HandleHelp,
	}
}

// commandIDs are the parsed identifiers of a command invocation.
type commandIDs struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseIDs(c *bot.Command) (commandIDs, error) {
	var ids commandIDs
	var err error

	if ids.guildID, err = snowflake.Parse(c.GuildID); err != nil {
		return ids, fmt.Errorf("invalid guild: %w", err)
	}
	if ids.userID, err = snowflake.Parse(c.UserID); err != nil {
		return ids, fmt.Errorf("invalid user: %w", err)
	}
	if ids.channelID, err = snowflake.Parse(c.ChannelID); err != nil {
		return ids, fmt.Errorf("invalid channel: %w", err)
	}
	return ids, nil
}

// HandleJoin handles the join command.
func (h *CommandHandlers) HandleJoin(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(successEmbed(fmt.Sprintf("Connected to <#%s>.", output.VoiceChannelID)))
}

// HandleLeave handles the leave command.
func (h *CommandHandlers) HandleLeave(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	left, err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: ids.guildID})
	if err != nil {
		// The session is discarded either way.
		slog.Warn("failed to leave voice channel cleanly", "guild", ids.guildID, "error", err)
	}
	if !left {
		return r.Respond(errorEmbed("I'm not in a voice channel!"))
	}

	return r.Respond(successEmbed("👋 Left the voice channel!"))
}

// HandlePlay handles the play command.
func (h *CommandHandlers) HandlePlay(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	query, err := c.RequireOption("query")
	if err != nil {
		return respondUsage(r, fmt.Sprintf("%splay <URL or search query>", c.Prefix))
	}

	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	if err := r.Defer(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	// 1. Join the requester's voice channel (no-op when already there)
	_, err = h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               ids.guildID,
		UserID:                ids.userID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	// 2. Resolve the query into one track or a playlist
	loaded, err := h.trackLoader.LoadTracks(ctx, usecases.LoadTracksInput{Query: query})
	if err != nil {
		return respondError(r, err)
	}

	// 3. Add to queue
	if loaded.IsPlaylist {
		output, err := h.queue.EnqueuePlaylist(ctx, usecases.EnqueuePlaylistInput{
			GuildID:               ids.guildID,
			Tracks:                loaded.Tracks,
			RequesterID:           ids.userID,
			NotificationChannelID: ids.channelID,
		})
		if err != nil {
			return respondError(r, err)
		}

		unit := "videos"
		if loaded.Source == domain.TrackSourceSpotify {
			unit = "songs"
		}
		return r.Respond(successEmbed(fmt.Sprintf(
			"✅ Added %d %s from **%s** to the queue!",
			output.Count,
			unit,
			loaded.PlaylistName,
		)))
	}

	queued, err := h.queue.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:               ids.guildID,
		Track:                 loaded.Tracks[0],
		RequesterID:           ids.userID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(queuedEmbed(queued))
}

// HandleSearch handles the search command.
func (h *CommandHandlers) HandleSearch(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	query, err := c.RequireOption("query")
	if err != nil {
		return respondUsage(r, fmt.Sprintf("%ssearch <query>", c.Prefix))
	}

	if err := r.Defer(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	tracks, err := h.trackLoader.SearchTracks(ctx, usecases.SearchTracksInput{
		Query: query,
		Limit: searchResultLimit,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(searchEmbed(query, tracks, c.Prefix))
}

// HandleSkip handles the skip command.
func (h *CommandHandlers) HandleSkip(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}
	if !output.Skipped {
		return r.Respond(errorEmbed("No songs to skip!"))
	}

	return r.Respond(successEmbed("⏭️ Skipped to the next song!"))
}

// HandlePause handles the pause command.
func (h *CommandHandlers) HandlePause(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err = h.playback.Pause(ctx, usecases.PauseInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(successEmbed("⏸️ Paused the music!"))
}

// HandleResume handles the resume command.
func (h *CommandHandlers) HandleResume(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err = h.playback.Resume(ctx, usecases.ResumeInput{
		GuildID:               ids.guildID,
		NotificationChannelID: ids.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(successEmbed("▶️ Resumed the music!"))
}

// HandleStop handles the stop command.
func (h *CommandHandlers) HandleStop(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.setNotificationChannel(ids)

	if err := h.playback.Stop(ctx, usecases.StopInput{GuildID: ids.guildID}); err != nil {
		return respondError(r, err)
	}

	return r.Respond(successEmbed("⏹️ Stopped the music and cleared the queue!"))
}

// HandleQueue handles the queue command.
func (h *CommandHandlers) HandleQueue(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	h.setNotificationChannel(ids)

	tracks, nowPlaying := h.queue.Snapshot(ids.guildID)
	if len(tracks) == 0 {
		return r.Respond(successEmbed("📭 The queue is empty!"))
	}

	return r.Respond(queueEmbed(tracks, nowPlaying))
}

// HandleNowPlaying handles the nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	ids, err := parseIDs(c)
	if err != nil {
		return respondError(r, err)
	}

	h.setNotificationChannel(ids)

	track := h.queue.NowPlaying(ids.guildID)
	if track == nil {
		return r.Respond(errorEmbed("Nothing is currently playing!"))
	}

	return r.Respond(nowPlayingEmbed(track))
}

// HandleHelp handles the help command.
func (h *CommandHandlers) HandleHelp(_ *discordgo.Session, c *bot.Command, r bot.Responder) error {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "!"
	}
	return r.Respond(helpEmbed(prefix))
}

// setNotificationChannel points the guild's notifications at the channel the
// command came from. Guilds without a session are left alone.
func (h *CommandHandlers) setNotificationChannel(ids commandIDs) {
	_ = h.notificationChannel.Set(usecases.SetNotificationChannelInput{
		GuildID:   ids.guildID,
		ChannelID: ids.channelID,
	})
}

// Response helpers.

func queuedEmbed(queued *usecases.QueuedTrack) *discordgo.MessageEmbed {
	track := queued.Track

	title := fmt.Sprintf("**%s**", track.Title)
	if track.URL != "" {
		title = fmt.Sprintf("[%s](%s)", track.Title, track.URL)
	}

	if queued.StartedPlaying {
		return successEmbed(fmt.Sprintf("🎵 Now playing %s!", title))
	}

	embed := successEmbed(fmt.Sprintf("✅ Added %s to the queue!", title))
	if queued.Position > 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Position in queue: %d", queued.Position),
		}
	}
	return embed
}

func respondUsage(r bot.Responder, usage string) error {
	embed := errorEmbed(fmt.Sprintf("Usage: `%s`", usage))
	embed.Title = "Please provide a query!"
	return r.Respond(embed)
}

func respondError(r bot.Responder, err error) error {
	return r.Respond(errorEmbed(errorMessage(err)))
}

// errorMessage renders a usecase error for users. Unexpected errors are
// logged and replaced with a generic message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrCatalogDisabled):
		return "This source is not configured on this bot."
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "You must be in a voice channel!"
	case errors.Is(err, usecases.ErrConnectionFailed):
		return "I couldn't connect to your voice channel."
	case errors.Is(err, usecases.ErrNotConnected):
		return "I'm not in a voice channel!"
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is currently playing!"
	case errors.Is(err, usecases.ErrAlreadyPaused):
		return "The music is already paused!"
	case errors.Is(err, usecases.ErrNotPaused):
		return "The music is not paused!"
	case errors.Is(err, usecases.ErrNoResults):
		return "No videos found for your search query!"
	case errors.Is(err, usecases.ErrUnsupportedURL):
		return "That URL is not supported. Use a YouTube or Spotify link, or a search query."
	case errors.Is(err, usecases.ErrLoadFailed):
		return "Failed to load that track. Please try again later."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Please try again."
	default:
		slog.Error("unexpected command error", "error", err)
		return "An error occurred while processing your command."
	}
}
