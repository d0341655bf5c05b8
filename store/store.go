// Package store persists the bot's state as two whole-file JSON snapshots:
// the per-user activity map (userdata.json) and the stream status record
// (streamdata.json). Every save rewrites the full file; there is no append
// log or rotation. All writes are serialized through a single mutex so an
// event-driven save cannot interleave with a timer-driven one.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	usersFile  = "userdata.json"
	streamFile = "streamdata.json"
)

// UserRecord holds the cumulative activity counters for one user.
// Level is always derived from TotalXP; it is stored only so the snapshot
// stays readable and compatible with the legacy file format.
type UserRecord struct {
	MessageCount  int        `json:"messageCount"`
	VoiceMinutes  int        `json:"voiceMinutes"`
	TotalXP       int        `json:"totalXP"`
	Level         int        `json:"level"`
	VoiceJoinTime *time.Time `json:"voiceJoinTime,omitempty"`
}

// StreamStatus is the singleton live-state record for the monitored channel.
type StreamStatus struct {
	TwitchLive      bool       `json:"twitchLive"`
	LastTwitchCheck *time.Time `json:"lastTwitchCheck"`
}

// Store reads and writes the two snapshot files under a data directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New returns a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string { return s.dir }

// Ping reports whether the data directory is still accessible.
func (s *Store) Ping() error {
	_, err := os.Stat(s.dir)
	return err
}

// LoadUsers reads the user activity snapshot. A missing file yields an empty
// map; malformed content also yields an empty map plus the decode error so
// the caller can log it (data loss is accepted, never fatal).
func (s *Store) LoadUsers() (map[string]*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make(map[string]*UserRecord)
	b, err := os.ReadFile(filepath.Join(s.dir, usersFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no user data snapshot, starting fresh", slog.String("file", usersFile))
			return users, nil
		}
		return users, fmt.Errorf("read %s: %w", usersFile, err)
	}
	if err := json.Unmarshal(b, &users); err != nil {
		return make(map[string]*UserRecord), fmt.Errorf("decode %s: %w", usersFile, err)
	}
	return users, nil
}

// SaveUsers overwrites the user activity snapshot with the full map.
func (s *Store) SaveUsers(users map[string]*UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(usersFile, users)
}

// LoadStream reads the stream status snapshot, defaulting to offline when
// the file is missing or unreadable.
func (s *Store) LoadStream() (StreamStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st StreamStatus
	b, err := os.ReadFile(filepath.Join(s.dir, streamFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no stream status snapshot, assuming offline", slog.String("file", streamFile))
			return st, nil
		}
		return st, fmt.Errorf("read %s: %w", streamFile, err)
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return StreamStatus{}, fmt.Errorf("decode %s: %w", streamFile, err)
	}
	return st, nil
}

// SaveStream overwrites the stream status snapshot.
func (s *Store) SaveStream(st StreamStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(streamFile, st)
}

func (s *Store) write(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
