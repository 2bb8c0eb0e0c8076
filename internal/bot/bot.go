package bot

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/bwmarrin/discordgo"
)

// Intents requested from the gateway: guild metadata, message text for prefixed
// commands, and voice states for locating members and following the bot's own voice session.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildVoiceStates

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config      *Config
	session     *discordgo.Session
	modules     []Module
	handlers    map[string]CommandHandler
	aliases     map[string]string
	definitions map[string]*discordgo.ApplicationCommand
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:      cfg,
		modules:     make([]Module, 0),
		handlers:    make(map[string]CommandHandler),
		aliases:     make(map[string]string),
		definitions: make(map[string]*discordgo.ApplicationCommand),
	}
}

// LoadModules loads modules from the global registry and applies their configuration.
func (b *Bot) LoadModules() error {
	b.modules = Modules()

	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}

	return nil
}

// Start initializes the bot, connects to Discord, and registers commands.
func (b *Bot) Start() error {
	// Create Discord session
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = Intents
	b.session = session

	// Initialize modules
	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	b.buildHandlerMap()

	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(b.handleMessage)
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleDisconnect)
	b.session.AddHandler(b.handleResumed)

	// Register module event handlers
	b.registerEventHandlers()

	// Open connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Register commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
		"prefix", b.config.Prefix,
	)

	return nil
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	// Shutdown modules
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session: b.session,
		Config:  b.config,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name to handler mapping, the alias table,
// and the definition lookup used to map prefixed arguments onto options.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())

		for _, cmd := range mod.Commands() {
			b.definitions[cmd.Name] = cmd
		}

		if aliased, ok := mod.(AliasedModule); ok {
			maps.Copy(b.aliases, aliased.Aliases())
		}
	}
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the application's global command set with the modules' commands.
// Overwriting makes re-registration on every start idempotent.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.config.ClientID, "", commands)
	if err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	for _, cmd := range registered {
		slog.Debug("registered command", "command", cmd.Name)
	}

	return nil
}

// resolveCommand maps a prefixed command name or alias to a registered command name.
func (b *Bot) resolveCommand(name string) (string, bool) {
	if _, ok := b.handlers[name]; ok {
		return name, true
	}
	if target, ok := b.aliases[name]; ok {
		if _, ok := b.handlers[target]; ok {
			return target, true
		}
	}
	return "", false
}

// prefixedCommand converts a prefixed text message into a Command.
// Returns nil if the message is not a command this bot knows.
func (b *Bot) prefixedCommand(m *discordgo.Message) *Command {
	rawName, args, ok := parsePrefixed(b.config.Prefix, m.Content)
	if !ok {
		return nil
	}

	name, ok := b.resolveCommand(rawName)
	if !ok {
		slog.Debug("ignored unknown prefixed command", "command", rawName)
		return nil
	}

	options := make(map[string]string)
	if optName := firstStringOption(b.definitions[name]); optName != "" && args != "" {
		options[optName] = args
	}

	return &Command{
		Name:      name,
		Source:    SourcePrefix,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Prefix:    b.config.Prefix,
		options:   options,
	}
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// handleInteraction routes incoming slash commands to the appropriate handler.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	responder := NewInteractionResponder(s, i.Interaction)
	cmd := commandFromInteraction(i, b.config.Prefix)

	handler, ok := b.handlers[cmd.Name]
	if !ok {
		slog.Warn("found no handler for command", "command", cmd.Name)
		b.respondWithEmbed(responder, "Unknown Command", "This command is not recognized.",
			colorYellow)
		return
	}

	b.dispatch(s, handler, cmd, responder)
}

// handleMessage routes prefixed text commands to the same handlers as slash commands.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// Ignore messages from the bot itself
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if m.GuildID == "" {
		return
	}

	cmd := b.prefixedCommand(m.Message)
	if cmd == nil {
		return
	}

	b.dispatch(s, b.handlers[cmd.Name], cmd, NewMessageResponder(s, m.Message))
}

// dispatch runs a handler and reports unexpected failures to the user.
func (b *Bot) dispatch(s *discordgo.Session, handler CommandHandler, cmd *Command, r Responder) {
	if err := handler(s, cmd, r); err != nil {
		slog.Error("failed to handle command",
			"command", cmd.Name,
			"guild", cmd.GuildID,
			"error", err,
		)
		b.respondWithEmbed(r, "Error", "An error occurred while processing your command.",
			colorRed)
	}
}

// handleReady publishes the presence string once the gateway session is ready.
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	status := PresenceText(b.config.Prefix)
	if err := s.UpdateListeningStatus(status); err != nil {
		slog.Warn("failed to update presence", "error", err)
	}
	slog.Info("gateway session ready", "guilds", len(r.Guilds), "status", status)
}

// handleDisconnect only logs; discordgo reconnects on its own.
func (b *Bot) handleDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	slog.Warn("disconnected from gateway")
}

func (b *Bot) handleResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	slog.Info("resumed gateway session")
}

// PresenceText is the listening status shown under the bot's name.
func PresenceText(prefix string) string {
	return fmt.Sprintf("🎵 Music | %shelp for commands", prefix)
}

// respondWithEmbed sends a plain embed reply.
func (b *Bot) respondWithEmbed(r Responder, title, description string, color int) {
	err := r.Respond(&discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
