package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadUsersMissingFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	users, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers() on missing file error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty map, got %d entries", len(users))
	}
}

func TestUsersRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	join := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := map[string]*UserRecord{
		"100": {MessageCount: 3, VoiceMinutes: 12, TotalXP: 90, Level: 1},
		"200": {MessageCount: 250, VoiceMinutes: 0, TotalXP: 2500, Level: 3, VoiceJoinTime: &join},
	}
	if err := s.SaveUsers(want); err != nil {
		t.Fatalf("SaveUsers() error: %v", err)
	}
	got, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers() error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadUsersMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "userdata.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	users, err := s.LoadUsers()
	if err == nil {
		t.Error("expected decode error for malformed file")
	}
	if len(users) != 0 {
		t.Errorf("expected empty fallback map, got %d entries", len(users))
	}
}

func TestStreamRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Missing file defaults to offline with no prior check.
	st, err := s.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream() on missing file error: %v", err)
	}
	if st.TwitchLive || st.LastTwitchCheck != nil {
		t.Errorf("expected zero status, got %+v", st)
	}

	checked := time.Date(2025, 6, 15, 20, 30, 0, 0, time.UTC)
	want := StreamStatus{TwitchLive: true, LastTwitchCheck: &checked}
	if err := s.SaveStream(want); err != nil {
		t.Fatalf("SaveStream() error: %v", err)
	}
	got, err := s.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream() error: %v", err)
	}
	if got.TwitchLive != want.TwitchLive {
		t.Errorf("TwitchLive = %v, want %v", got.TwitchLive, want.TwitchLive)
	}
	if got.LastTwitchCheck == nil || !got.LastTwitchCheck.Equal(checked) {
		t.Errorf("LastTwitchCheck = %v, want %v", got.LastTwitchCheck, checked)
	}
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := s.SaveUsers(map[string]*UserRecord{"a": {TotalXP: 10, Level: 1, MessageCount: 1}}); err != nil {
		t.Fatalf("SaveUsers() error: %v", err)
	}
	if err := s.SaveUsers(map[string]*UserRecord{"b": {TotalXP: 20, Level: 1, MessageCount: 2}}); err != nil {
		t.Fatalf("SaveUsers() error: %v", err)
	}
	got, err := s.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers() error: %v", err)
	}
	if _, ok := got["a"]; ok {
		t.Error("stale record survived a full-overwrite save")
	}
	if got["b"] == nil || got["b"].TotalXP != 20 {
		t.Errorf("latest snapshot not readable: %+v", got)
	}
}
