package bot

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// ErrMissingArgument is returned by handlers when a required option was not supplied.
var ErrMissingArgument = errors.New("missing required argument")

// CommandSource tells where a command invocation came from.
type CommandSource int

const (
	// SourceSlash is an application (slash) command interaction.
	SourceSlash CommandSource = iota
	// SourcePrefix is a text message starting with the configured prefix.
	SourcePrefix
)

// Command is a single command invocation, independent of whether it arrived
// as a slash command or as a prefixed text message.
type Command struct {
	Name      string
	Source    CommandSource
	GuildID   string
	ChannelID string
	UserID    string
	Prefix    string
	options   map[string]string
}

// Option returns the string value of the named option, or "" if absent.
func (c *Command) Option(name string) string {
	if c.options == nil {
		return ""
	}
	return c.options[name]
}

// RequireOption returns the named option, or an error wrapping
// ErrMissingArgument when it is absent or blank.
func (c *Command) RequireOption(name string) (string, error) {
	value := strings.TrimSpace(c.Option(name))
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, name)
	}
	return value, nil
}

// NewCommand builds a Command, mostly useful for tests.
func NewCommand(name, guildID, channelID, userID string, options map[string]string) *Command {
	return &Command{
		Name:      name,
		GuildID:   guildID,
		ChannelID: channelID,
		UserID:    userID,
		options:   options,
	}
}

// commandFromInteraction converts a slash command interaction into a Command.
func commandFromInteraction(i *discordgo.InteractionCreate, prefix string) *Command {
	data := i.ApplicationCommandData()

	options := make(map[string]string, len(data.Options))
	for _, opt := range data.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			options[opt.Name] = opt.StringValue()
		}
	}

	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	return &Command{
		Name:      data.Name,
		Source:    SourceSlash,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		UserID:    userID,
		Prefix:    prefix,
		options:   options,
	}
}

// parsePrefixed splits "<prefix><name> <args>" into a lower-cased name and the raw argument text.
// ok is false when content does not start with the prefix or names no command.
func parsePrefixed(prefix, content string) (name, args string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return "", "", false
	}

	name = rest
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name, args = rest[:i], rest[i:]
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// firstStringOption returns the name of the first string option in a command definition.
func firstStringOption(def *discordgo.ApplicationCommand) string {
	if def == nil {
		return ""
	}
	for _, opt := range def.Options {
		if opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.Name
		}
	}
	return ""
}
