package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/sgrmusic/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// maxUpcomingTracks is how many pending tracks the queue embed lists.
const maxUpcomingTracks = 10

func successEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	}
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

// queueEmbed renders the now-playing track followed by up to ten upcoming
// tracks. tracks must not be empty; the first entry is the now-playing track
// when nowPlaying is set.
func queueEmbed(tracks []domain.Track, nowPlaying bool) *discordgo.MessageEmbed {
	var sb strings.Builder

	upcoming := tracks
	if nowPlaying {
		sb.WriteString("**🎵 Now Playing:**\n")
		writeQueueLine(&sb, &tracks[0], false)
		sb.WriteString("\n")
		upcoming = tracks[1:]
	}

	if len(upcoming) > 0 {
		sb.WriteString("**📋 Up Next:**\n")
		for i, track := range upcoming[:min(len(upcoming), maxUpcomingTracks)] {
			position := i + 1
			if nowPlaying {
				position++
			}
			// Escape the period so Discord does not render a markdown list.
			fmt.Fprintf(&sb, "%d\\. ", position)
			writeQueueLine(&sb, &track, true)
		}
	}

	footer := fmt.Sprintf("%d song(s) in queue", len(tracks))
	if len(tracks) > maxUpcomingTracks {
		footer = fmt.Sprintf("... and %d more songs", len(tracks)-maxUpcomingTracks)
	}

	return &discordgo.MessageEmbed{
		Title:       "🎵 Music Queue",
		Description: sb.String(),
		Color:       colorSuccess,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}

func writeQueueLine(sb *strings.Builder, track *domain.Track, bold bool) {
	label := track.Title
	if track.Author != "" {
		label += " by " + track.Author
	}
	if bold {
		label = "**" + label + "**"
	}
	sb.WriteString(label)
	if track.RequesterID != 0 {
		fmt.Fprintf(sb, " (requested by <@%s>)", track.RequesterID)
	}
	sb.WriteString("\n")
}

// nowPlayingEmbed renders the reply of the nowplaying command.
func nowPlayingEmbed(track *domain.Track) *discordgo.MessageEmbed {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n", track.Title)
	if track.Author != "" {
		fmt.Fprintf(&sb, "by %s\n", track.Author)
	}
	if track.RequesterID != 0 {
		fmt.Fprintf(&sb, "Requested by <@%s>", track.RequesterID)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		URL:         track.URL,
		Description: strings.TrimRight(sb.String(), "\n"),
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  track.FormattedDuration(),
				Inline: true,
			},
		},
	}

	if track.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ThumbnailURL}
	}

	return embed
}

// searchEmbed lists search results with links so they can be passed to play.
func searchEmbed(query string, tracks []*domain.Track, prefix string) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, track := range tracks {
		author := track.Author
		if author == "" {
			author = "Unknown"
		}
		fmt.Fprintf(&sb, "**%d.** [%s](%s)\n*by %s*\n\n", i+1, track.Title, track.URL, author)
	}

	return &discordgo.MessageEmbed{
		Title:       "🔍 Search Results for: " + query,
		Description: strings.TrimRight(sb.String(), "\n"),
		Color:       colorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Use %splay [URL] to add a video to the queue", prefix),
		},
	}
}

// helpEmbed lists every command with the configured prefix.
func helpEmbed(prefix string) *discordgo.MessageEmbed {
	commands := []string{
		fmt.Sprintf("`%splay [URL/search]` - Play music from YouTube/Spotify", prefix),
		fmt.Sprintf("`%sskip` - Skip current song", prefix),
		fmt.Sprintf("`%spause` - Pause current song", prefix),
		fmt.Sprintf("`%sresume` - Resume current song", prefix),
		fmt.Sprintf("`%sstop` - Stop music and clear queue", prefix),
		fmt.Sprintf("`%squeue` - Show current queue", prefix),
		fmt.Sprintf("`%sjoin` - Join your voice channel", prefix),
		fmt.Sprintf("`%sleave` - Leave voice channel", prefix),
		fmt.Sprintf("`%ssearch [query]` - Search for videos", prefix),
		fmt.Sprintf("`%snowplaying` - Show currently playing song", prefix),
	}

	examples := []string{
		fmt.Sprintf("`%splay https://open.spotify.com/playlist/...`", prefix),
		fmt.Sprintf("`%splay https://www.youtube.com/watch?v=...`", prefix),
		fmt.Sprintf("`%splay https://www.youtube.com/playlist?list=...`", prefix),
		"You can also use `/` slash commands (just type `/` and see the options):",
		"`/play`, `/skip`, `/queue`, `/help`, etc.",
	}

	return &discordgo.MessageEmbed{
		Title:       "🎵 Music Bot Commands",
		Description: "Here are all the available commands:",
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "🎵 Music Commands",
				Value: strings.Join(commands, "\n"),
			},
			{
				Name:  "📝 Usage Examples",
				Value: strings.Join(examples, "\n"),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Supports YouTube/Spotify playlists and search!",
		},
	}
}
