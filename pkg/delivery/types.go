// Package delivery puts dictated text into the focused application:
// populate the system clipboard, detect the foreground session type,
// attempt one synthetic paste keystroke, and fall back to a clipboard-only
// event if the paste cannot be performed.
package delivery

// SurfaceClass is the focused-surface classification TextDelivery consults
// before choosing a paste chord.
type SurfaceClass int

const (
	SurfaceDefault SurfaceClass = iota
	SurfaceTerminal
	SurfaceEditor
	SurfaceBrowser
)

// SessionType distinguishes the graphical compositor protocol in use, since
// the portal paste path and the X11 fallback are mutually exclusive.
type SessionType int

const (
	SessionUnknown SessionType = iota
	SessionWayland
	SessionX11
)

// ClipboardOnlyReason enumerates why a paste attempt did not happen or did
// not succeed, attached to the `clipboard-only` event.
type ClipboardOnlyReason string

const (
	ReasonNoPasteTool      ClipboardOnlyReason = "no_paste_tool"
	ReasonSurfaceRefused   ClipboardOnlyReason = "surface_refused"
	ReasonPermissionDenied ClipboardOnlyReason = "permission_denied"
	ReasonUnknownSession   ClipboardOnlyReason = "unknown_session"
)

// Result is what the engine receives back from one delivery attempt.
type Result struct {
	// Pasted is true only if the synthetic paste chord was sent and the
	// transport reported no error. The clipboard is always populated
	// first, regardless of Pasted.
	Pasted bool
	Reason ClipboardOnlyReason // populated only when !Pasted
}

// DefaultTerminalPasteChord is the fallback for
// `delivery.terminal_paste_chord`: the conventional terminal-emulator
// paste chord (shift-insert) rather than the standard ctrl/cmd-v chord
// most GUI surfaces accept.
const DefaultTerminalPasteChord = "shift+insert"

// DefaultPasteChord is the standard paste chord for non-terminal surfaces.
const DefaultPasteChord = "ctrl+v"
