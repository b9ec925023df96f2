// Package metrics implements the per-session latency ledger: four
// monotonic stage boundaries per dictation, derived millisecond figures,
// and configurable threshold alerts. Aggregate counters are also exported
// through a prometheus registry so the engine's latency behavior can be
// watched outside of per-session logs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Thresholds configures warn-level alerts per stage boundary.
type Thresholds struct {
	STTMs                 int64
	PostMsDefaultProvider int64
	TotalMs               int64
}

// DefaultThresholds returns the stock alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		STTMs:                 1500,
		PostMsDefaultProvider: 250,
		TotalMs:               2000,
	}
}

// Alert is emitted whenever a stage boundary crosses its configured
// threshold.
type Alert struct {
	Name        string
	ActualMs    int64
	ThresholdMs int64
	SessionID   string
}

// AlertSink receives threshold alerts; the engine wires this to its
// RedactingLogger at warn level.
type AlertSink interface {
	OnAlert(Alert)
}

// AlertSinkFunc adapts a function to AlertSink.
type AlertSinkFunc func(Alert)

func (f AlertSinkFunc) OnAlert(a Alert) { f(a) }

// Timestamps holds the four monotonic stage boundaries of one session.
// Zero value for a field means "not yet reached".
type Timestamps struct {
	CaptureStart      time.Time
	SttComplete       time.Time
	PostComplete      time.Time
	InjectionComplete time.Time
}

// LatencyMetrics holds the derived per-stage millisecond figures.
type LatencyMetrics struct {
	Total      int64
	STT        int64
	Post       int64
	Injection  int64
	Processing int64
}

// Tracker records one session's timestamps and raises threshold alerts as
// boundaries are reached. It is not safe for concurrent use by design —
// exactly one goroutine (the Engine's event loop) ever touches a given
// session's tracker.
type Tracker struct {
	sessionID  string
	thresholds Thresholds
	sink       AlertSink
	ts         Timestamps
	reg        *Registry
}

// NewTracker creates a tracker for a single session.
func NewTracker(sessionID string, thresholds Thresholds, sink AlertSink, reg *Registry) *Tracker {
	if sink == nil {
		sink = AlertSinkFunc(func(Alert) {})
	}
	return &Tracker{sessionID: sessionID, thresholds: thresholds, sink: sink, reg: reg}
}

// MarkCaptureStart records the first boundary. Must be called exactly once,
// before any other Mark* call.
func (t *Tracker) MarkCaptureStart(at time.Time) {
	t.ts.CaptureStart = at
}

// MarkSTTComplete records the STT boundary and checks the stt_ms
// threshold. This is the single authoritative recording site for
// stt_complete — nothing else stamps this timestamp.
func (t *Tracker) MarkSTTComplete(at time.Time) {
	t.ts.SttComplete = at
	ms := clampedMs(t.ts.SttComplete, t.ts.CaptureStart)
	if t.reg != nil {
		t.reg.observeStage("stt", ms)
	}
	if t.thresholds.STTMs > 0 && ms > t.thresholds.STTMs {
		t.alert("stt_threshold_exceeded", ms, t.thresholds.STTMs)
	}
}

// MarkPostComplete records the post-processing boundary and checks the
// post_ms_default_provider threshold (soft target — never aborts a stage,
// only alerts).
func (t *Tracker) MarkPostComplete(at time.Time) {
	t.ts.PostComplete = at
	ms := clampedMs(t.ts.PostComplete, t.ts.SttComplete)
	if t.reg != nil {
		t.reg.observeStage("post", ms)
	}
	if t.thresholds.PostMsDefaultProvider > 0 && ms > t.thresholds.PostMsDefaultProvider {
		t.alert("post_budget_exceeded", ms, t.thresholds.PostMsDefaultProvider)
	}
}

// MarkInjectionComplete records the final boundary and checks the total_ms
// threshold against the whole session.
func (t *Tracker) MarkInjectionComplete(at time.Time) {
	t.ts.InjectionComplete = at
	if t.reg != nil {
		t.reg.observeStage("injection", clampedMs(t.ts.InjectionComplete, t.stageStart()))
	}
	total := clampedMs(t.ts.InjectionComplete, t.ts.CaptureStart)
	if t.reg != nil {
		t.reg.observeStage("total", total)
	}
	if t.thresholds.TotalMs > 0 && total > t.thresholds.TotalMs {
		t.alert("total_threshold_exceeded", total, t.thresholds.TotalMs)
	}
}

// stageStart returns the boundary preceding injection (post if it ran, else
// stt), used to derive the injection-only duration.
func (t *Tracker) stageStart() time.Time {
	if !t.ts.PostComplete.IsZero() {
		return t.ts.PostComplete
	}
	return t.ts.SttComplete
}

func (t *Tracker) alert(name string, actual, threshold int64) {
	if t.reg != nil {
		t.reg.incAlert(name)
	}
	t.sink.OnAlert(Alert{Name: name, ActualMs: actual, ThresholdMs: threshold, SessionID: t.sessionID})
}

// Latency computes the derived LatencyMetrics invariant: every field is
// clamped at zero and only populated once its boundary has been reached.
func (t *Tracker) Latency() LatencyMetrics {
	m := LatencyMetrics{}
	if !t.ts.SttComplete.IsZero() {
		m.STT = clampedMs(t.ts.SttComplete, t.ts.CaptureStart)
	}
	if !t.ts.PostComplete.IsZero() && !t.ts.SttComplete.IsZero() {
		m.Post = clampedMs(t.ts.PostComplete, t.ts.SttComplete)
	}
	if !t.ts.InjectionComplete.IsZero() {
		m.Injection = clampedMs(t.ts.InjectionComplete, t.stageStart())
		m.Total = clampedMs(t.ts.InjectionComplete, t.ts.CaptureStart)
	}
	m.Processing = m.STT + m.Post
	return m
}

// Timestamps returns a copy of the recorded boundaries, satisfying the
// invariant capture_start <= stt_complete <= post_complete <=
// injection_complete whenever each is set (callers are expected to only
// mark boundaries in order; the tracker does not itself enforce it beyond
// clamping derived durations at zero).
func (t *Tracker) Timestamps() Timestamps {
	return t.ts
}

func clampedMs(later, earlier time.Time) int64 {
	if later.IsZero() || earlier.IsZero() {
		return 0
	}
	d := later.Sub(earlier).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

// Registry holds the prometheus collectors shared across all sessions'
// trackers. One Registry is created per Engine instance.
type Registry struct {
	stageLatency *prometheus.HistogramVec
	alerts       *prometheus.CounterVec
}

// NewRegistry builds and registers the engine's prometheus collectors on reg.
// Passing a nil *prometheus.Registry uses the default global registry.
func NewRegistry(reg *prometheus.Registry) *Registry {
	r := &Registry{
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dictation",
			Subsystem: "session",
			Name:      "stage_latency_ms",
			Help:      "Latency in milliseconds of each dictation session stage.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2000, 5000},
		}, []string{"stage"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dictation",
			Subsystem: "session",
			Name:      "threshold_alerts_total",
			Help:      "Count of threshold alerts raised, by alert name.",
		}, []string{"name"}),
	}
	if reg != nil {
		reg.MustRegister(r.stageLatency, r.alerts)
	} else {
		prometheus.MustRegister(r.stageLatency, r.alerts)
	}
	return r
}

func (r *Registry) observeStage(stage string, ms int64) {
	if r == nil {
		return
	}
	r.stageLatency.WithLabelValues(stage).Observe(float64(ms))
}

func (r *Registry) incAlert(name string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(name).Inc()
}
