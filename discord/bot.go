// Package discord wires the bot to the chat platform: it forwards activity
// events into the XP ledger, answers the text commands, and delivers the
// go-live announcements. All state lives on the Bot so tests and restarts
// get fresh instances.
package discord

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/guildxp/activity"
	"github.com/onnwee/guildxp/config"
	"github.com/onnwee/guildxp/monitor"
)

// Bot owns the Discord session and the handlers attached to it.
type Bot struct {
	session  *discordgo.Session
	activity *activity.Service
	cfg      *config.Config
	monitor  *monitor.Monitor
}

// New creates the session and registers handlers. The monitor is attached
// later via SetMonitor because the monitor needs the bot as its notifier.
func New(cfg *config.Config, svc *activity.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates

	bot := &Bot{session: session, activity: svc, cfg: cfg}

	session.AddHandler(bot.ready)
	session.AddHandler(bot.guildMemberAdd)
	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.voiceStateUpdate)
	session.AddHandler(bot.disconnect)

	return bot, nil
}

// SetMonitor attaches the live-stream monitor used by the !stream commands.
func (b *Bot) SetMonitor(m *monitor.Monitor) { b.monitor = m }

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	slog.Info("discord session ready",
		slog.String("user", r.User.Username),
		slog.Int("guilds", len(r.Guilds)))
}

// disconnect events are logged only; discordgo reconnects on its own and
// nothing here should take the process down.
func (b *Bot) disconnect(s *discordgo.Session, d *discordgo.Disconnect) {
	slog.Warn("discord gateway disconnected")
}

func (b *Bot) guildMemberAdd(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
	slog.Info("member joined", slog.String("user", e.User.ID), slog.String("guild", e.GuildID))
	b.activity.EnsureUser(e.User.ID)

	ch := b.findWelcomeChannel(e.GuildID)
	if ch == nil {
		slog.Warn("no welcome channel found", slog.String("guild", e.GuildID))
		return
	}
	memberCount := 0
	if g, err := s.State.Guild(e.GuildID); err == nil {
		memberCount = g.MemberCount
	}
	guildName := e.GuildID
	if g, err := s.State.Guild(e.GuildID); err == nil && g.Name != "" {
		guildName = g.Name
	}
	if _, err := s.ChannelMessageSendEmbed(ch.ID, welcomeEmbed(e.User, guildName, memberCount)); err != nil {
		slog.Warn("failed to send welcome message", slog.Any("err", err))
	}
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	oldLevel, newLevel := b.activity.RecordMessage(m.Author.ID)
	if newLevel > oldLevel {
		embed := levelUpEmbed(m.Author, newLevel)
		if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
			slog.Warn("failed to announce level up", slog.Any("err", err))
		}
	}

	switch strings.ToLower(strings.TrimSpace(m.Content)) {
	case "!rank":
		b.handleRank(s, m)
	case "!leaderboard":
		b.handleLeaderboard(s, m)
	case "!help":
		b.handleHelp(s, m)
	case "!stream status":
		b.handleStreamStatus(s, m)
	case "!stream test":
		b.handleStreamTest(s, m)
	}
}

func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	b.activity.VoiceStateChanged(vs.UserID, vs.ChannelID, time.Now().UTC())
}

// findWelcomeChannel picks the configured welcome channel, falling back to a
// "general" channel and then the guild's first text channel.
func (b *Bot) findWelcomeChannel(guildID string) *discordgo.Channel {
	channels, err := b.session.GuildChannels(guildID)
	if err != nil {
		slog.Warn("failed to list guild channels", slog.String("guild", guildID), slog.Any("err", err))
		return nil
	}
	var firstText *discordgo.Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.Contains(ch.Name, b.cfg.WelcomeChannel) || strings.Contains(ch.Name, "general") {
			return ch
		}
		if firstText == nil {
			firstText = ch
		}
	}
	return firstText
}

// findTextChannel returns the first text channel across all guilds whose
// name matches exactly.
func (b *Bot) findTextChannel(name string) *discordgo.Channel {
	for _, g := range b.session.State.Guilds {
		channels, err := b.session.GuildChannels(g.ID)
		if err != nil {
			slog.Warn("failed to list guild channels", slog.String("guild", g.ID), slog.Any("err", err))
			continue
		}
		for _, ch := range channels {
			if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
				return ch
			}
		}
	}
	return nil
}

func (b *Bot) reply(s *discordgo.Session, m *discordgo.MessageCreate, embed *discordgo.MessageEmbed) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: m.Reference(),
	})
	if err != nil {
		slog.Warn("failed to send reply", slog.String("channel", m.ChannelID), slog.Any("err", err))
	}
}
