// Package activity owns the per-user XP ledger: message counters, voice
// session tracking, level derivation, and the leaderboard projection.
// A Service instance holds all mutable state; nothing lives at package
// level so each test constructs its own isolated instance. Every mutation
// snapshots the full user map through the store before returning.
package activity

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/onnwee/guildxp/store"
	"github.com/onnwee/guildxp/telemetry"
)

// Service is the activity ledger. All exported methods are safe for
// concurrent use; discordgo dispatches handlers on separate goroutines.
type Service struct {
	mu    sync.Mutex
	store *store.Store
	users map[string]*store.UserRecord
	// first-seen order of user ids; the leaderboard breaks XP ties by it
	order []string
	// current voice channel per user, used only to detect channel switches;
	// not persisted (the open-session start time on the record is)
	voiceChannels map[string]string
}

// NewService loads the user snapshot from st and returns a ready ledger.
// Malformed snapshot content is logged and replaced with an empty map.
func NewService(st *store.Store) *Service {
	users, err := st.LoadUsers()
	if err != nil {
		slog.Warn("user snapshot unreadable, starting empty", slog.Any("err", err))
	}
	order := make([]string, 0, len(users))
	for id := range users {
		order = append(order, id)
	}
	// Map iteration order is random; sort for a deterministic baseline.
	// Ties between users loaded from the same snapshot have no meaningful
	// insertion order anyway.
	sort.Strings(order)
	s := &Service{
		store:         st,
		users:         users,
		order:         order,
		voiceChannels: make(map[string]string),
	}
	telemetry.SetTrackedUsers(len(users))
	return s
}

// EnsureUser creates a zeroed record for id if absent. Idempotent.
func (s *Service) EnsureUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensureLocked(id) {
		s.saveLocked()
	}
}

// RecordMessage credits one message and its XP to id, returning the level
// before and after so the caller can announce a level-up edge.
func (s *Service) RecordMessage(id string) (oldLevel, newLevel int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLocked(id)
	rec := s.users[id]
	rec.MessageCount++
	rec.TotalXP += MessageXP
	oldLevel = rec.Level
	newLevel = LevelOf(rec.TotalXP)
	rec.Level = newLevel
	telemetry.IncMessagesProcessed()
	telemetry.AddXPAwarded(MessageXP)
	if newLevel > oldLevel {
		telemetry.IncLevelUps()
	}
	s.saveLocked()
	return oldLevel, newLevel
}

// AddVoiceMinutes credits whole voice minutes and their XP to id.
// Zero or negative minutes are a no-op so clock skew and rapid reconnects
// can never mint phantom XP.
func (s *Service) AddVoiceMinutes(id string, minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := s.ensureLocked(id)
	if s.creditVoiceLocked(s.users[id], minutes) || created {
		s.saveLocked()
	}
}

// Stats returns a copy of the record for id, if one exists.
func (s *Service) Stats(id string) (store.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return store.UserRecord{}, false
	}
	return *rec, true
}

// TrackedUsers returns how many users have a record.
func (s *Service) TrackedUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Service) ensureLocked(id string) (created bool) {
	if _, ok := s.users[id]; ok {
		return false
	}
	s.users[id] = &store.UserRecord{Level: 1}
	s.order = append(s.order, id)
	telemetry.SetTrackedUsers(len(s.users))
	return true
}

func (s *Service) creditVoiceLocked(rec *store.UserRecord, minutes int) bool {
	if minutes <= 0 {
		return false
	}
	rec.VoiceMinutes += minutes
	rec.TotalXP += minutes * VoiceXPPerMinute
	rec.Level = LevelOf(rec.TotalXP)
	telemetry.AddVoiceMinutesCredited(minutes)
	telemetry.AddXPAwarded(minutes * VoiceXPPerMinute)
	return true
}

// saveLocked snapshots the full user map. Callers hold s.mu, so the map
// cannot change while the store marshals it. Save failures are logged and
// counted, never propagated; the in-memory state stays authoritative.
func (s *Service) saveLocked() {
	if err := s.store.SaveUsers(s.users); err != nil {
		telemetry.IncSnapshotSaveErrors()
		slog.Warn("user snapshot save failed", slog.Any("err", err))
		return
	}
	telemetry.IncSnapshotSaves()
}

// elapsedMinutes returns whole minutes between start and now, clamped to 0
// when the clock went backwards.
func elapsedMinutes(start, now time.Time) int {
	if now.Before(start) {
		return 0
	}
	return int(now.Sub(start) / time.Minute)
}
