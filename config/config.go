// Package config loads environment variables and provides a typed Config used across the bot.
// It applies sensible defaults so the binary can run locally with minimal setup.
// For required credentials, use ValidateDiscordReady / ValidateStreamReady.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// Discord
	DiscordToken   string
	WelcomeChannel string

	// Twitch stream monitor
	TwitchClientID     string
	TwitchClientSecret string
	TwitchChannel      string

	// Live announcement routing (Discord channel names)
	TwitchAnnounceChannel string
	KickAnnounceChannel   string

	// Storage
	DataDir string

	// Timers
	StreamPollInterval time.Duration
	StreamInitialDelay time.Duration
	VoiceFlushInterval time.Duration

	// Ops HTTP
	HTTPAddr string
}

// Load reads environment variables and applies defaults. It doesn't fail on
// missing credentials; missing optional variables disable features (e.g. the
// stream monitor without Twitch creds).
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	cfg.WelcomeChannel = os.Getenv("WELCOME_CHANNEL")
	if cfg.WelcomeChannel == "" {
		cfg.WelcomeChannel = "welcome"
	}

	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")
	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")

	cfg.TwitchAnnounceChannel = os.Getenv("TWITCH_ANNOUNCE_CHANNEL")
	if cfg.TwitchAnnounceChannel == "" {
		cfg.TwitchAnnounceChannel = "stream-announcements"
	}
	cfg.KickAnnounceChannel = os.Getenv("KICK_ANNOUNCE_CHANNEL")
	if cfg.KickAnnounceChannel == "" {
		cfg.KickAnnounceChannel = "kick-announcements"
	}

	cfg.DataDir = os.Getenv("DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}

	cfg.StreamPollInterval = durationEnv("STREAM_POLL_INTERVAL", time.Minute)
	cfg.StreamInitialDelay = durationEnv("STREAM_INITIAL_DELAY", 10*time.Second)
	cfg.VoiceFlushInterval = durationEnv("VOICE_FLUSH_INTERVAL", 5*time.Minute)

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg, nil
}

// durationEnv parses a duration env var, falling back to def when unset,
// unparsable, or non-positive.
func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// ValidateDiscordReady checks the fields required to log into Discord.
func (c *Config) ValidateDiscordReady() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("missing discord env: require DISCORD_TOKEN")
	}
	return nil
}

// ValidateStreamReady checks the fields required for the live-stream monitor.
func (c *Config) ValidateStreamReady() error {
	if c.TwitchClientID == "" || c.TwitchClientSecret == "" || c.TwitchChannel == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CLIENT_ID, TWITCH_CLIENT_SECRET, TWITCH_CHANNEL")
	}
	return nil
}
