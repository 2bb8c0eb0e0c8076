package discord

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Play music from a YouTube/Spotify URL or a search query",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL or search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search for videos on YouTube",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "skip",
			Description: "Skip the current song",
		},
		{
			Name:        "pause",
			Description: "Pause the current song",
		},
		{
			Name:        "resume",
			Description: "Resume the current song",
		},
		{
			Name:        "stop",
			Description: "Stop music and clear the queue",
		},
		{
			Name:        "queue",
			Description: "Show the current music queue",
		},
		{
			Name:        "nowplaying",
			Description: "Show the currently playing song",
		},
		{
			Name:        "join",
			Description: "Join your voice channel",
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "help",
			Description: "Show all available commands",
		},
	}
}

// Aliases returns the short prefixed spellings of the commands.
func Aliases() map[string]string {
	return map[string]string{
		"p":          "play",
		"s":          "skip",
		"r":          "resume",
		"q":          "queue",
		"np":         "nowplaying",
		"disconnect": "leave",
	}
}
