package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/application/ports"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)

// youtubeThumbnailQualities lists thumbnail variants from best to worst.
var youtubeThumbnailQualities = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

// Notifier sends notifications to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client

	// thumbnailBaseURL is overridden in tests.
	thumbnailBaseURL string
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		thumbnailBaseURL: "https://img.youtube.com/vi",
	}
}

// SendNowPlaying sends a "Now Playing" embed to the channel and returns the message ID.
func (n *Notifier) SendNowPlaying(
	channelID snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	embed := n.nowPlayingEmbed(info)

	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return 0, err
	}
	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// DeleteMessage deletes a message from the channel.
func (n *Notifier) DeleteMessage(channelID snowflake.ID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

func (n *Notifier) nowPlayingEmbed(info *ports.NowPlayingInfo) *discordgo.MessageEmbed {
	heading := "Now Playing"
	if info.FromPlaylist {
		heading = "Now Playing from Playlist"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    heading,
			IconURL: info.Source.IconURL(),
		},
		Title: info.Title,
		URL:   info.URL,
		Color: info.Source.Color(),
	}

	if !info.EnqueuedAt.IsZero() {
		embed.Timestamp = info.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	if info.Author != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Artist",
			Value:  info.Author,
			Inline: true,
		})
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Duration",
		Value:  info.Duration,
		Inline: true,
	})

	if info.RequesterName != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", info.RequesterName),
			IconURL: info.RequesterAvatarURL,
		}
	}

	if thumbnailURL := n.bestThumbnail(info); thumbnailURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: thumbnailURL,
		}
	}

	return embed
}

// bestThumbnail upgrades a YouTube thumbnail to the highest resolution
// available. Other sources keep their artwork as is.
func (n *Notifier) bestThumbnail(info *ports.NowPlayingInfo) string {
	if info.Source != domain.TrackSourceYouTube {
		return info.ThumbnailURL
	}

	query := domain.ParseQuery(info.URL)
	if query.Kind != domain.QueryYouTubeVideo {
		return info.ThumbnailURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range youtubeThumbnailQualities {
		url := fmt.Sprintf("%s/%s/%s.jpg", n.thumbnailBaseURL, query.ID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}

	return info.ThumbnailURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}
