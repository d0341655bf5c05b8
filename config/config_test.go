package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TWITCH_ANNOUNCE_CHANNEL", "")
	t.Setenv("KICK_ANNOUNCE_CHANNEL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("STREAM_POLL_INTERVAL", "")
	t.Setenv("VOICE_FLUSH_INTERVAL", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.TwitchAnnounceChannel != "stream-announcements" {
		t.Errorf("TwitchAnnounceChannel = %q, want default", cfg.TwitchAnnounceChannel)
	}
	if cfg.KickAnnounceChannel != "kick-announcements" {
		t.Errorf("KickAnnounceChannel = %q, want default", cfg.KickAnnounceChannel)
	}
	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.StreamPollInterval != time.Minute {
		t.Errorf("StreamPollInterval = %v, want 1m", cfg.StreamPollInterval)
	}
	if cfg.VoiceFlushInterval != 5*time.Minute {
		t.Errorf("VoiceFlushInterval = %v, want 5m", cfg.VoiceFlushInterval)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
}

func TestDurationEnvOverride(t *testing.T) {
	t.Setenv("STREAM_POLL_INTERVAL", "30s")
	t.Setenv("VOICE_FLUSH_INTERVAL", "garbage")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StreamPollInterval != 30*time.Second {
		t.Errorf("StreamPollInterval = %v, want 30s", cfg.StreamPollInterval)
	}
	// Unparsable values fall back to the default rather than failing.
	if cfg.VoiceFlushInterval != 5*time.Minute {
		t.Errorf("VoiceFlushInterval = %v, want default 5m", cfg.VoiceFlushInterval)
	}
}

func TestValidateDiscordReady(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	cfg, _ := Load()
	if err := cfg.ValidateDiscordReady(); err == nil {
		t.Error("expected error when DISCORD_TOKEN missing")
	}
	t.Setenv("DISCORD_TOKEN", "token")
	cfg, _ = Load()
	if err := cfg.ValidateDiscordReady(); err != nil {
		t.Errorf("expected valid discord config, got %v", err)
	}
}

func TestValidateStreamReady(t *testing.T) {
	t.Setenv("TWITCH_CLIENT_ID", "id")
	t.Setenv("TWITCH_CLIENT_SECRET", "secret")
	t.Setenv("TWITCH_CHANNEL", "somechannel")
	cfg, _ := Load()
	if err := cfg.ValidateStreamReady(); err != nil {
		t.Errorf("expected valid stream config, got %v", err)
	}

	t.Setenv("TWITCH_CHANNEL", "")
	cfg, _ = Load()
	if err := cfg.ValidateStreamReady(); err == nil {
		t.Error("expected error when TWITCH_CHANNEL missing")
	}
}
