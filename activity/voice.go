package activity

import (
	"context"
	"log/slog"
	"time"
)

// VoiceStateChanged advances the per-user voice session state machine.
// channelID is the voice channel the user is now in, or empty when they
// left voice entirely. now is passed explicitly so tests can drive logical
// time. Transitions:
//
//	no session + join   -> open session at now
//	open session + leave -> credit floor(elapsed minutes), close
//	open session + switch -> credit elapsed, reopen at now (no gap)
//	same channel repeat  -> no-op
func (s *Service) VoiceStateChanged(id, channelID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.ensureLocked(id)
	rec := s.users[id]

	switch {
	case channelID == "":
		if rec.VoiceJoinTime != nil {
			mins := elapsedMinutes(*rec.VoiceJoinTime, now)
			s.creditVoiceLocked(rec, mins)
			rec.VoiceJoinTime = nil
			delete(s.voiceChannels, id)
			changed = true
			slog.Debug("voice session closed", slog.String("user", id), slog.Int("minutes", mins))
		}
	case rec.VoiceJoinTime == nil:
		t := now
		rec.VoiceJoinTime = &t
		s.voiceChannels[id] = channelID
		changed = true
		slog.Debug("voice session opened", slog.String("user", id), slog.String("channel", channelID))
	case s.voiceChannels[id] != channelID:
		// Channel switch without leaving voice: flush and reopen at now.
		mins := elapsedMinutes(*rec.VoiceJoinTime, now)
		s.creditVoiceLocked(rec, mins)
		t := now
		rec.VoiceJoinTime = &t
		s.voiceChannels[id] = channelID
		changed = true
		slog.Debug("voice session switched", slog.String("user", id), slog.String("channel", channelID), slog.Int("minutes", mins))
	default:
		// Same channel, session already open.
	}

	if changed {
		s.saveLocked()
	}
}

// FlushOpenSessions credits elapsed whole minutes for every open voice
// session and resets each session start to now. This is the only path that
// awards XP to users who never leave voice. Returns how many sessions were
// flushed.
func (s *Service) FlushOpenSessions(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	flushed := 0
	for _, rec := range s.users {
		if rec.VoiceJoinTime == nil {
			continue
		}
		s.creditVoiceLocked(rec, elapsedMinutes(*rec.VoiceJoinTime, now))
		t := now
		rec.VoiceJoinTime = &t
		flushed++
	}
	if flushed > 0 {
		s.saveLocked()
	}
	return flushed
}

// StartFlushJob periodically flushes open voice sessions until ctx is done.
func (s *Service) StartFlushJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	slog.Info("voice flush job starting", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("voice flush job stopped")
			return
		case <-ticker.C:
			if n := s.FlushOpenSessions(time.Now()); n > 0 {
				slog.Debug("flushed open voice sessions", slog.Int("count", n))
			}
		}
	}
}
