// Package monitor polls Twitch for the configured broadcaster's live status
// and fires announcements on the offline-to-live edge. Repeated polls in the
// same state are no-ops; the status snapshot is persisted only on
// transitions. A failing poll skips the cycle and never crashes the process.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/onnwee/guildxp/store"
	"github.com/onnwee/guildxp/telemetry"
	"github.com/onnwee/guildxp/twitchapi"
)

// StreamSource reports the live streams for a login; *twitchapi.HelixClient
// satisfies it.
type StreamSource interface {
	GetStreams(ctx context.Context, login string) ([]twitchapi.Stream, error)
}

// Notifier delivers the two go-live announcements. The Kick announcement is
// a documented policy decision: it fires on the Twitch edge unconditionally,
// with no independent check of the Kick side (the broadcaster simulcasts).
type Notifier interface {
	AnnounceTwitchLive(ctx context.Context, s twitchapi.Stream) error
	AnnounceKickLive(ctx context.Context, s twitchapi.Stream) error
}

// Monitor owns the singleton stream status record.
type Monitor struct {
	source   StreamSource
	store    *store.Store
	notifier Notifier
	login    string

	mu     sync.Mutex
	status store.StreamStatus
}

// New builds a monitor seeded from the persisted status snapshot, so a
// restart while live does not re-announce.
func New(source StreamSource, st *store.Store, notifier Notifier, login string) *Monitor {
	status, err := st.LoadStream()
	if err != nil {
		slog.Warn("stream status snapshot unreadable, assuming offline", slog.Any("err", err))
	}
	telemetry.SetStreamLive(status.TwitchLive)
	return &Monitor{source: source, store: st, notifier: notifier, login: login, status: status}
}

// Status returns a copy of the current stream status record.
func (m *Monitor) Status() store.StreamStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// CheckOnce runs a single poll cycle with full edge detection. It is the
// same path for timer polls and operator-forced polls.
func (m *Monitor) CheckOnce(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "monitor", "stream-poll")
	defer span.End()
	telemetry.IncStreamPolls()

	now := time.Now().UTC()
	m.status.LastTwitchCheck = &now

	streams, err := m.source.GetStreams(ctx, m.login)
	if err != nil {
		// Treat as unknown: skip this cycle's transition logic entirely.
		telemetry.IncStreamPollErrors()
		telemetry.RecordError(span, err)
		slog.Warn("stream poll failed, skipping cycle", slog.String("channel", m.login), slog.Any("err", err))
		return
	}

	live := len(streams) > 0

	switch {
	case live && !m.status.TwitchLive:
		m.status.TwitchLive = true
		telemetry.SetStreamLive(true)
		m.persist()
		s := streams[0]
		slog.Info("stream went live",
			slog.String("channel", m.login),
			slog.String("title", s.Title),
			slog.String("game", s.GameName),
			slog.Int("viewers", s.ViewerCount))
		m.announce(ctx, s)
	case !live && m.status.TwitchLive:
		m.status.TwitchLive = false
		telemetry.SetStreamLive(false)
		m.persist()
		slog.Info("stream went offline", slog.String("channel", m.login))
	default:
		// Steady state: no persistence, no notification.
	}
}

// announce fires the Twitch announcement, then the Kick one. A failure in
// either is logged and counted but never blocks the other.
func (m *Monitor) announce(ctx context.Context, s twitchapi.Stream) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.AnnounceTwitchLive(ctx, s); err != nil {
		telemetry.IncNotificationsFailed()
		slog.Warn("twitch live announcement failed", slog.Any("err", err))
	} else {
		telemetry.IncNotificationsSent()
	}
	if err := m.notifier.AnnounceKickLive(ctx, s); err != nil {
		telemetry.IncNotificationsFailed()
		slog.Warn("kick live announcement failed", slog.Any("err", err))
	} else {
		telemetry.IncNotificationsSent()
	}
}

func (m *Monitor) persist() {
	if err := m.store.SaveStream(m.status); err != nil {
		telemetry.IncSnapshotSaveErrors()
		slog.Warn("stream status save failed", slog.Any("err", err))
		return
	}
	telemetry.IncSnapshotSaves()
}

// Start polls on a fixed interval after one initial delayed check, until
// ctx is done.
func (m *Monitor) Start(ctx context.Context, initialDelay, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("stream monitor starting",
		slog.String("channel", m.login),
		slog.Duration("initial_delay", initialDelay),
		slog.Duration("interval", interval))

	select {
	case <-ctx.Done():
		return
	case <-time.After(initialDelay):
	}
	m.CheckOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stream monitor stopped", slog.String("channel", m.login))
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}
