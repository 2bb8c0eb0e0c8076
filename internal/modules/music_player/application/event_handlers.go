package application

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// PlaybackEventHandler feeds stream completions back into the queue engine.
type PlaybackEventHandler struct {
	playback   *usecases.PlaybackService
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback *usecases.PlaybackService,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handlers properly registered")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	h.playback.HandleTrackEnded(ctx, event)
}

// NotificationEventHandler keeps one "Now Playing" message per guild in sync
// with playback.
type NotificationEventHandler struct {
	repo             domain.GuildStateRepository
	subscriber       ports.EventSubscriber
	notifier         ports.NotificationSender
	userInfoProvider ports.UserInfoProvider
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	repo domain.GuildStateRepository,
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfoProvider ports.UserInfoProvider,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		repo:             repo,
		subscriber:       subscriber,
		notifier:         notifier,
		userInfoProvider: userInfoProvider,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnPlaybackStarted(h.handlePlaybackStarted)
	h.subscriber.OnPlaybackFinished(h.handlePlaybackFinished)

	slog.Debug("notification event handlers properly registered")
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	_ context.Context,
	event domain.PlaybackStartedEvent,
) {
	state := h.repo.Get(event.GuildID)
	if state == nil {
		slog.Debug(
			"skipping now playing notification, state not found",
			"guild", event.GuildID,
		)
		return
	}

	h.deletePrevious(state)

	if event.NotificationChannelID == 0 {
		return
	}

	info := h.nowPlayingInfo(event.GuildID, &event.Track)

	messageID, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info)
	if err != nil {
		slog.Error(
			"failed to send now playing notification",
			"guild", event.GuildID,
			"channel", event.NotificationChannelID,
			"error", err,
		)
		return
	}

	state.Lock()
	state.SetNowPlayingMessage(&domain.NowPlayingMessage{
		ChannelID: event.NotificationChannelID,
		MessageID: messageID,
	})
	state.Unlock()
}

func (h *NotificationEventHandler) handlePlaybackFinished(
	_ context.Context,
	event domain.PlaybackFinishedEvent,
) {
	state := h.repo.Get(event.GuildID)
	if state == nil {
		return
	}

	h.deletePrevious(state)
}

// deletePrevious removes the stored "Now Playing" message, if any.
func (h *NotificationEventHandler) deletePrevious(state *domain.GuildState) {
	state.Lock()
	msg := state.NowPlayingMessage()
	state.ClearNowPlayingMessage()
	state.Unlock()

	if msg == nil {
		return
	}

	if err := h.notifier.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		slog.Warn(
			"failed to delete previous now playing message",
			"guild", state.GuildID(),
			"now_playing", msg,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) nowPlayingInfo(
	guildID snowflake.ID,
	track *domain.Track,
) *ports.NowPlayingInfo {
	info := &ports.NowPlayingInfo{
		Title:        track.Title,
		Author:       track.Author,
		Duration:     track.FormattedDuration(),
		URL:          track.URL,
		ThumbnailURL: track.ThumbnailURL,
		Source:       track.Source,
		FromPlaylist: track.Origin == domain.OriginPlaylist,
		RequesterID:  track.RequesterID,
		EnqueuedAt:   track.EnqueuedAt,
	}

	if track.RequesterID == 0 || h.userInfoProvider == nil {
		return info
	}

	userInfo, err := h.userInfoProvider.GetUserInfo(guildID, track.RequesterID)
	if err != nil {
		slog.Debug(
			"failed to get requester info",
			"guild", guildID,
			"user", track.RequesterID,
			"error", err,
		)
		return info
	}

	info.RequesterName = userInfo.DisplayName
	info.RequesterAvatarURL = userInfo.AvatarURL

	return info
}
