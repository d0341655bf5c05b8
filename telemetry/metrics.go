// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesProcessed    prometheus.Counter
	XPAwarded            prometheus.Counter
	LevelUps             prometheus.Counter
	VoiceMinutesCredited prometheus.Counter
	StreamPolls          prometheus.Counter
	StreamPollErrors     prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	SnapshotSaves        prometheus.Counter
	SnapshotSaveErrors   prometheus.Counter

	// Gauges
	TrackedUsersGauge prometheus.Gauge
	StreamLiveGauge   prometheus.Gauge // 1=live, 0=offline
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesProcessed = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_messages_processed_total", Help: "Number of guild messages credited with XP"})
		XPAwarded = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_xp_awarded_total", Help: "Total XP awarded across all users"})
		LevelUps = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_level_ups_total", Help: "Number of level-up edges observed"})
		VoiceMinutesCredited = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_voice_minutes_credited_total", Help: "Whole voice minutes credited to users"})
		StreamPolls = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_stream_polls_total", Help: "Number of stream status poll cycles"})
		StreamPollErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_stream_poll_errors_total", Help: "Number of poll cycles skipped due to API errors"})
		NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_notifications_sent_total", Help: "Number of live announcements delivered"})
		NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_notifications_failed_total", Help: "Number of live announcements that failed to send"})
		SnapshotSaves = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_snapshot_saves_total", Help: "Number of successful snapshot writes"})
		SnapshotSaveErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "guildxp_snapshot_save_errors_total", Help: "Number of failed snapshot writes"})
		TrackedUsersGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "guildxp_tracked_users", Help: "Number of users with an activity record"})
		StreamLiveGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "guildxp_stream_live", Help: "Monitored stream live=1 offline=0"})
	})
}

// Nil-guarded increment helpers so callers work before/without Init (tests).

func IncMessagesProcessed() {
	if MessagesProcessed != nil {
		MessagesProcessed.Inc()
	}
}

func AddXPAwarded(n int) {
	if XPAwarded != nil {
		XPAwarded.Add(float64(n))
	}
}

func IncLevelUps() {
	if LevelUps != nil {
		LevelUps.Inc()
	}
}

func AddVoiceMinutesCredited(n int) {
	if VoiceMinutesCredited != nil {
		VoiceMinutesCredited.Add(float64(n))
	}
}

func IncStreamPolls() {
	if StreamPolls != nil {
		StreamPolls.Inc()
	}
}

func IncStreamPollErrors() {
	if StreamPollErrors != nil {
		StreamPollErrors.Inc()
	}
}

func IncNotificationsSent() {
	if NotificationsSent != nil {
		NotificationsSent.Inc()
	}
}

func IncNotificationsFailed() {
	if NotificationsFailed != nil {
		NotificationsFailed.Inc()
	}
}

func IncSnapshotSaves() {
	if SnapshotSaves != nil {
		SnapshotSaves.Inc()
	}
}

func IncSnapshotSaveErrors() {
	if SnapshotSaveErrors != nil {
		SnapshotSaveErrors.Inc()
	}
}

// SetTrackedUsers records the current user count.
func SetTrackedUsers(n int) {
	if TrackedUsersGauge != nil {
		TrackedUsersGauge.Set(float64(n))
	}
}

// SetStreamLive sets the gauge to 1 if live else 0.
func SetStreamLive(live bool) {
	if StreamLiveGauge != nil {
		if live {
			StreamLiveGauge.Set(1)
		} else {
			StreamLiveGauge.Set(0)
		}
	}
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
