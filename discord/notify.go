package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/guildxp/twitchapi"
)

// AnnounceTwitchLive posts the go-live embed to the configured Twitch
// announcement channel. It implements monitor.Notifier.
func (b *Bot) AnnounceTwitchLive(ctx context.Context, s twitchapi.Stream) error {
	return b.announceLive(b.cfg.TwitchAnnounceChannel, liveEmbed(
		"🔴 Live on Twitch!",
		colorTwitch,
		fmt.Sprintf("https://twitch.tv/%s", b.streamLogin(s)),
		s,
	))
}

// AnnounceKickLive posts the mirror announcement for the Kick simulcast.
// There is no independent Kick status check; the broadcaster streams to
// both platforms at once, so this fires on the same edge.
func (b *Bot) AnnounceKickLive(ctx context.Context, s twitchapi.Stream) error {
	return b.announceLive(b.cfg.KickAnnounceChannel, liveEmbed(
		"🟢 Live on Kick!",
		colorKick,
		fmt.Sprintf("https://kick.com/%s", b.streamLogin(s)),
		s,
	))
}

func (b *Bot) announceLive(channelName string, embed *discordgo.MessageEmbed) error {
	ch := b.findTextChannel(channelName)
	if ch == nil {
		return fmt.Errorf("announcement channel %q not found", channelName)
	}
	if _, err := b.session.ChannelMessageSendEmbed(ch.ID, embed); err != nil {
		return fmt.Errorf("send announcement to %q: %w", channelName, err)
	}
	return nil
}

func (b *Bot) streamLogin(s twitchapi.Stream) string {
	if s.UserLogin != "" {
		return s.UserLogin
	}
	return b.cfg.TwitchChannel
}

func liveEmbed(title string, color int, url string, s twitchapi.Stream) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       color,
		Title:       title,
		URL:         url,
		Description: fmt.Sprintf("**%s**", s.Title),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎮 Playing", Value: orUnknown(s.GameName), Inline: true},
			{Name: "👀 Viewers", Value: fmt.Sprintf("%d", s.ViewerCount), Inline: true},
		},
		Image:     &discordgo.MessageEmbedImage{URL: s.ThumbnailAt(640, 360)},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
