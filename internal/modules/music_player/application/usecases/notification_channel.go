package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// NotificationChannelService handles updating the notification channel for a guild.
type NotificationChannelService struct {
	repo domain.GuildStateRepository
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(repo domain.GuildStateRepository) *NotificationChannelService {
	return &NotificationChannelService{repo: repo}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set updates the text channel that receives "Now Playing" notices.
func (n *NotificationChannelService) Set(input SetNotificationChannelInput) error {
	state := n.repo.Get(input.GuildID)
	if state == nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsConnected() {
		return ErrNotConnected
	}

	state.SetNotificationChannelID(input.ChannelID)

	return nil
}
