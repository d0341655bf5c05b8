package telemetry

import (
	"context"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestCountersInitialized(t *testing.T) {
	Init()

	if MessagesProcessed == nil {
		t.Error("MessagesProcessed counter not initialized")
	}
	if StreamPolls == nil {
		t.Error("StreamPolls counter not initialized")
	}
	if TrackedUsersGauge == nil {
		t.Error("TrackedUsersGauge not initialized")
	}
}

func TestInitIdempotent(t *testing.T) {
	Init()
	// A second Init must not re-register (promauto panics on duplicates).
	Init()
}

func TestXPAwardedAccumulates(t *testing.T) {
	Init()

	before := counterValue(t)
	AddXPAwarded(10)
	AddXPAwarded(25)
	after := counterValue(t)
	if after-before != 35 {
		t.Errorf("XPAwarded delta = %v, want 35", after-before)
	}
}

func counterValue(t *testing.T) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := XPAwarded.Write(m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.Counter.GetValue()
}

func TestSetStreamLive(t *testing.T) {
	Init()

	SetStreamLive(true)
	m := &dto.Metric{}
	if err := StreamLiveGauge.Write(m); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	if m.Gauge.GetValue() != 1 {
		t.Errorf("StreamLiveGauge = %v, want 1", m.Gauge.GetValue())
	}

	SetStreamLive(false)
	if err := StreamLiveGauge.Write(m); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	if m.Gauge.GetValue() != 0 {
		t.Errorf("StreamLiveGauge = %v, want 0", m.Gauge.GetValue())
	}
}

func TestCorrelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("GetCorrelation on empty ctx = %q, want empty", got)
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("GetCorrelation = %q, want abc-123", got)
	}
}
