package engine

import (
	"github.com/keyscribe/dictation-engine/pkg/engineerr"
	"github.com/keyscribe/dictation-engine/pkg/metrics"
)

// HostEventKind names the events the engine emits to the host (tray UI,
// hotkey layer, notifier).
type HostEventKind string

const (
	HostEventStateChanged     HostEventKind = "state-changed"
	HostEventSessionStarted   HostEventKind = "session-started"
	HostEventSessionCompleted HostEventKind = "session-completed"
	HostEventClipboardOnly    HostEventKind = "clipboard-only"
	HostEventError            HostEventKind = "error"
)

// HostEvent is one notification delivered over Engine.Events(). Exactly one
// group of fields is meaningful, selected by Kind — a flat struct rather
// than an interface union, so every field is a plain value the host can
// render without a type switch.
type HostEvent struct {
	Kind HostEventKind

	State State // HostEventStateChanged

	SessionID string // HostEventSessionStarted, HostEventSessionCompleted

	Text         string                 // HostEventSessionCompleted, HostEventClipboardOnly
	Latency      metrics.LatencyMetrics // HostEventSessionCompleted
	UsedFallback bool                   // HostEventSessionCompleted
	Provider     string                 // HostEventSessionCompleted

	Reason string // HostEventClipboardOnly: delivery.ClipboardOnlyReason value

	ErrorKind engineerr.Kind // HostEventError
	Message   string         // HostEventError
}
