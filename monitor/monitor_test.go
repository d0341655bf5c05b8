package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/onnwee/guildxp/store"
	"github.com/onnwee/guildxp/twitchapi"
)

// scriptedSource replays one poll result per CheckOnce call.
type scriptedSource struct {
	results []pollResult
	calls   int
}

type pollResult struct {
	streams []twitchapi.Stream
	err     error
}

func (s *scriptedSource) GetStreams(_ context.Context, _ string) ([]twitchapi.Stream, error) {
	if s.calls >= len(s.results) {
		return nil, nil
	}
	r := s.results[s.calls]
	s.calls++
	return r.streams, r.err
}

type recordingNotifier struct {
	twitchCalls int
	kickCalls   int
	twitchErr   error
}

func (n *recordingNotifier) AnnounceTwitchLive(context.Context, twitchapi.Stream) error {
	n.twitchCalls++
	return n.twitchErr
}

func (n *recordingNotifier) AnnounceKickLive(context.Context, twitchapi.Stream) error {
	n.kickCalls++
	return nil
}

func liveResult(title string) pollResult {
	return pollResult{streams: []twitchapi.Stream{{Title: title, GameName: "Celeste", ViewerCount: 100}}}
}

func offlineResult() pollResult {
	return pollResult{}
}

func newTestMonitor(t *testing.T, src *scriptedSource, n Notifier) (*Monitor, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	return New(src, st, n, "somechannel"), st
}

func TestEdgeTriggeredNotification(t *testing.T) {
	src := &scriptedSource{results: []pollResult{
		offlineResult(),
		offlineResult(),
		liveResult("Going live!"),
		liveResult("Going live!"),
		offlineResult(),
	}}
	n := &recordingNotifier{}
	m, _ := newTestMonitor(t, src, n)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m.CheckOnce(ctx)
	}

	if n.twitchCalls != 1 || n.kickCalls != 1 {
		t.Errorf("announcements = twitch %d / kick %d, want exactly one pair", n.twitchCalls, n.kickCalls)
	}
	if m.Status().TwitchLive {
		t.Error("liveFlag should be false after the final offline poll")
	}
}

func TestTransitionsPersisted(t *testing.T) {
	src := &scriptedSource{results: []pollResult{liveResult("on"), offlineResult()}}
	m, st := newTestMonitor(t, src, &recordingNotifier{})

	ctx := context.Background()
	m.CheckOnce(ctx)
	persisted, err := st.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream() error: %v", err)
	}
	if !persisted.TwitchLive {
		t.Error("live transition not persisted")
	}
	if persisted.LastTwitchCheck == nil {
		t.Error("LastTwitchCheck not persisted on transition")
	}

	m.CheckOnce(ctx)
	persisted, err = st.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream() error: %v", err)
	}
	if persisted.TwitchLive {
		t.Error("offline transition not persisted")
	}
}

func TestSteadyStateDoesNotPersist(t *testing.T) {
	src := &scriptedSource{results: []pollResult{offlineResult(), offlineResult()}}
	m, st := newTestMonitor(t, src, &recordingNotifier{})

	ctx := context.Background()
	m.CheckOnce(ctx)
	m.CheckOnce(ctx)

	persisted, err := st.LoadStream()
	if err != nil {
		t.Fatalf("LoadStream() error: %v", err)
	}
	// No transition ever happened, so nothing was written.
	if persisted.LastTwitchCheck != nil {
		t.Errorf("steady-state poll persisted a snapshot: %+v", persisted)
	}
}

func TestPollFailureSkipsCycle(t *testing.T) {
	src := &scriptedSource{results: []pollResult{
		liveResult("on"),
		{err: errors.New("api down")},
		liveResult("still on"),
	}}
	n := &recordingNotifier{}
	m, _ := newTestMonitor(t, src, n)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		m.CheckOnce(ctx)
	}

	// The failed cycle must neither clear the flag nor re-announce when the
	// next successful poll still reports live.
	if !m.Status().TwitchLive {
		t.Error("poll failure cleared the live flag")
	}
	if n.twitchCalls != 1 {
		t.Errorf("twitch announcements = %d, want 1", n.twitchCalls)
	}
}

func TestPrimaryFailureDoesNotBlockSecondary(t *testing.T) {
	src := &scriptedSource{results: []pollResult{liveResult("on")}}
	n := &recordingNotifier{twitchErr: errors.New("channel not found")}
	m, _ := newTestMonitor(t, src, n)

	m.CheckOnce(context.Background())

	if n.kickCalls != 1 {
		t.Errorf("kick announcement not sent after twitch failure: %d calls", n.kickCalls)
	}
	if !m.Status().TwitchLive {
		t.Error("state transition must survive a notification failure")
	}
}

func TestRestartWhileLiveDoesNotReannounce(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	src := &scriptedSource{results: []pollResult{liveResult("on")}}
	n := &recordingNotifier{}
	m := New(src, st, n, "somechannel")
	m.CheckOnce(context.Background())
	if n.twitchCalls != 1 {
		t.Fatalf("expected initial announcement, got %d", n.twitchCalls)
	}

	// New monitor over the same store: sees persisted live=true, so a live
	// poll result is a steady state.
	src2 := &scriptedSource{results: []pollResult{liveResult("on")}}
	n2 := &recordingNotifier{}
	m2 := New(src2, st, n2, "somechannel")
	m2.CheckOnce(context.Background())
	if n2.twitchCalls != 0 {
		t.Errorf("restart re-announced a stream already live: %d calls", n2.twitchCalls)
	}
}
