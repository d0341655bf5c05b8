package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/guildxp/activity"
	"github.com/onnwee/guildxp/store"
)

const (
	colorGreen  = 0x00ff00
	colorGold   = 0xffd700
	colorBlue   = 0x0099ff
	colorTwitch = 0x9146ff
	colorKick   = 0x53fc18
)

func welcomeEmbed(user *discordgo.User, guildName string, memberCount int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       colorGreen,
		Title:       "🎉 Welcome to the Server!",
		Description: fmt.Sprintf("Hey %s! Welcome to **%s**!", user.Mention(), guildName),
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👋 Get Started", Value: "Chat and join voice channels to earn XP and level up!"},
			{Name: "📊 Check Your Rank", Value: "Use `!rank` to see your stats"},
			{Name: "🏆 Leaderboard", Value: "Use `!leaderboard` to see top members"},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Member #%d", memberCount)},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func levelUpEmbed(user *discordgo.User, newLevel int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       colorGold,
		Title:       "🎊 Level Up!",
		Description: fmt.Sprintf("Congratulations %s! You've reached **Level %d**!", user.Mention(), newLevel),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏅 Rank", Value: activity.RankNameOf(newLevel)},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func rankEmbed(user *discordgo.User, rec store.UserRecord) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:     colorBlue,
		Title:     fmt.Sprintf("📊 %s's Stats", user.Username),
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏅 Rank", Value: activity.RankNameOf(rec.Level), Inline: true},
			{Name: "📈 Level", Value: fmt.Sprintf("%d", rec.Level), Inline: true},
			{Name: "⭐ Total XP", Value: fmt.Sprintf("%d", rec.TotalXP), Inline: true},
			{Name: "💬 Messages Sent", Value: fmt.Sprintf("%d", rec.MessageCount), Inline: true},
			{Name: "🎤 Voice Time", Value: fmt.Sprintf("%d minutes", rec.VoiceMinutes), Inline: true},
			{Name: "📊 XP to Next Level", Value: fmt.Sprintf("%d", activity.XPToNextLevel(rec.Level, rec.TotalXP)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Keep chatting and joining voice to earn more XP!"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// leaderboardLines renders one line per entry, resolving user ids to display
// names through resolve.
func leaderboardLines(entries []activity.Entry, resolve func(id string) string) string {
	var sb strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&sb, "%s **%s** - Level %d (%d XP)\n",
			activity.RankBadge(i), resolve(e.UserID), e.Record.Level, e.Record.TotalXP)
	}
	return sb.String()
}

func leaderboardEmbed(lines string) *discordgo.MessageEmbed {
	if lines == "" {
		lines = "No data available yet!"
	}
	return &discordgo.MessageEmbed{
		Color:       colorGold,
		Title:       "🏆 Server Leaderboard",
		Description: lines,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Top 10 most active members"},
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func helpEmbed() *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(commandList())+1)
	for _, c := range commandList() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: c.Name, Value: c.Desc})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "💡 How to Earn XP", Value: xpRules()})
	return &discordgo.MessageEmbed{
		Color:       colorGreen,
		Title:       "📚 Bot Commands",
		Description: "Here are the available commands:",
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Stay active to climb the ranks!"},
	}
}
