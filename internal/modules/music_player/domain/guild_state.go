package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GuildState holds the queue and playback state of one guild.
//
// The embedded mutex guards every field; callers lock the state around each
// read or mutation. guildID is immutable and may be read without the lock.
type GuildState struct {
	sync.Mutex

	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // 0 while disconnected
	notificationChannelID snowflake.ID // text channel for "Now Playing" notices
	nowPlayingMessage     *NowPlayingMessage
	nowPlaying            *Track
	paused                bool

	Pending Queue
}

// NewGuildState creates an idle, disconnected GuildState.
func NewGuildState(guildID snowflake.ID) *GuildState {
	return &GuildState{
		guildID: guildID,
		Pending: NewQueue(),
	}
}

// GuildID returns the guild ID.
func (s *GuildState) GuildID() snowflake.ID {
	return s.guildID
}

// VoiceChannelID returns the connected voice channel, or 0.
func (s *GuildState) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// SetVoiceChannelID records the voice channel the bot is connected to.
func (s *GuildState) SetVoiceChannelID(channelID snowflake.ID) {
	s.voiceChannelID = channelID
}

// IsConnected returns true if the guild has a voice session.
func (s *GuildState) IsConnected() bool {
	return s.voiceChannelID != 0
}

// NotificationChannelID returns the text channel used for notices.
func (s *GuildState) NotificationChannelID() snowflake.ID {
	return s.notificationChannelID
}

// SetNotificationChannelID updates the text channel used for notices.
func (s *GuildState) SetNotificationChannelID(channelID snowflake.ID) {
	s.notificationChannelID = channelID
}

// NowPlaying returns the track occupying the now-playing slot, or nil.
func (s *GuildState) NowPlaying() *Track {
	return s.nowPlaying
}

// IsIdle returns true if no track occupies the now-playing slot.
func (s *GuildState) IsIdle() bool {
	return s.nowPlaying == nil
}

// IsPlaying returns true if a track is in the now-playing slot and not paused.
func (s *GuildState) IsPlaying() bool {
	return s.nowPlaying != nil && !s.paused
}

// IsPaused returns true if the now-playing track is paused.
func (s *GuildState) IsPaused() bool {
	return s.nowPlaying != nil && s.paused
}

// SetPaused sets the paused sub-state.
func (s *GuildState) SetPaused(paused bool) {
	s.paused = paused
}

// Advance moves the head of the pending queue into the now-playing slot and
// returns it. With nothing pending the slot is cleared and nil is returned.
func (s *GuildState) Advance() *Track {
	s.nowPlaying = s.Pending.Pop()
	s.paused = false
	return s.nowPlaying
}

// ClearNowPlaying empties the now-playing slot, leaving pending tracks untouched.
func (s *GuildState) ClearNowPlaying() {
	s.nowPlaying = nil
	s.paused = false
}

// Reset clears pending tracks and the now-playing slot.
func (s *GuildState) Reset() {
	s.Pending.Clear()
	s.ClearNowPlaying()
}

// Snapshot returns copies of the now-playing track (if any) followed by the pending tracks.
func (s *GuildState) Snapshot() []Track {
	pending := s.Pending.List()

	result := make([]Track, 0, len(pending)+1)
	if s.nowPlaying != nil {
		result = append(result, *s.nowPlaying)
	}
	for _, t := range pending {
		result = append(result, *t)
	}
	return result
}

// NowPlayingMessage returns a copy of the last "Now Playing" message info.
func (s *GuildState) NowPlayingMessage() *NowPlayingMessage {
	if s.nowPlayingMessage == nil {
		return nil
	}
	msg := *s.nowPlayingMessage
	return &msg
}

// SetNowPlayingMessage stores the "Now Playing" message info for later deletion.
func (s *GuildState) SetNowPlayingMessage(msg *NowPlayingMessage) {
	s.nowPlayingMessage = msg
}

// ClearNowPlayingMessage clears the stored "Now Playing" message info.
func (s *GuildState) ClearNowPlayingMessage() {
	s.nowPlayingMessage = nil
}
