package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleRank(s *discordgo.Session, m *discordgo.MessageCreate) {
	rec, ok := b.activity.Stats(m.Author.ID)
	if !ok {
		// RecordMessage already ran for this message, so this cannot happen;
		// guard anyway so a logic change upstream fails soft.
		slog.Warn("rank requested for unknown user", slog.String("user", m.Author.ID))
		return
	}
	b.reply(s, m, rankEmbed(m.Author, rec))
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, m *discordgo.MessageCreate) {
	entries := b.activity.TopN(10)
	resolve := func(id string) string {
		if u, err := s.User(id); err == nil {
			return u.Username
		}
		slog.Warn("failed to resolve user for leaderboard", slog.String("user", id))
		return id
	}
	b.reply(s, m, leaderboardEmbed(leaderboardLines(entries, resolve)))
}

func (b *Bot) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.reply(s, m, helpEmbed())
}

func (b *Bot) handleStreamStatus(s *discordgo.Session, m *discordgo.MessageCreate) {
	if b.monitor == nil {
		b.replyText(s, m, "Stream monitoring is not configured.")
		return
	}
	st := b.monitor.Status()
	state := "offline"
	if st.TwitchLive {
		state = "🔴 LIVE"
	}
	lastCheck := "never"
	if st.LastTwitchCheck != nil {
		lastCheck = st.LastTwitchCheck.Format(time.RFC1123)
	}
	b.replyText(s, m, fmt.Sprintf("**%s** is currently %s (last checked: %s)", b.cfg.TwitchChannel, state, lastCheck))
}

func (b *Bot) handleStreamTest(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.isAdmin(s, m) {
		b.replyText(s, m, "You need administrator permissions to use this command.")
		return
	}
	if b.monitor == nil {
		b.replyText(s, m, "Stream monitoring is not configured.")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	b.monitor.CheckOnce(ctx)
	st := b.monitor.Status()
	b.replyText(s, m, fmt.Sprintf("Forced stream check complete. Live: %v", st.TwitchLive))
}

func (b *Bot) isAdmin(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		slog.Warn("failed to resolve permissions", slog.String("user", m.Author.ID), slog.Any("err", err))
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

func (b *Bot) replyText(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   content,
		Reference: m.Reference(),
	})
	if err != nil {
		slog.Warn("failed to send reply", slog.String("channel", m.ChannelID), slog.Any("err", err))
	}
}

// commandList is the set shown by !help, in display order.
func commandList() []struct{ Name, Desc string } {
	return []struct{ Name, Desc string }{
		{"!rank", "View your current stats, level, and rank"},
		{"!leaderboard", "See the top 10 most active members"},
		{"!stream status", "Check whether the stream is live"},
		{"!stream test", "Force a stream check (admins only)"},
		{"!help", "Show this help message"},
	}
}

// xpRules is the earn-XP blurb shown by !help and the welcome message.
func xpRules() string {
	return strings.Join([]string{
		"• Send messages: **10 XP** per message",
		"• Voice chat: **5 XP** per minute",
		"• Every **1000 XP** = 1 level up!",
	}, "\n")
}
