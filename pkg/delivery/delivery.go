package delivery

import "context"

// TextDelivery is the clipboard-then-paste strategy. It owns no state
// across calls: each Deliver invocation is independent.
type TextDelivery struct {
	Clipboard     Clipboard
	Detector      SurfaceDetector
	Portal        PasteExecutor // used when Detector reports SessionWayland
	X11           PasteExecutor // used when Detector reports SessionX11
	TerminalChord string        // from delivery.terminal_paste_chord; empty uses the default
}

// NewTextDelivery wires the default clipboard and surface detector; the
// paste executors are supplied by the caller since they depend on a
// portal session handle (Wayland) or a resolvable xdotool binary (X11)
// established during engine startup.
func NewTextDelivery(portal, x11 PasteExecutor, terminalChord string) *TextDelivery {
	return &TextDelivery{
		Clipboard:     NewSystemClipboard(),
		Detector:      NewEnvSurfaceDetector(),
		Portal:        portal,
		X11:           x11,
		TerminalChord: terminalChord,
	}
}

// Deliver places text on the clipboard, then attempts exactly one
// synthetic paste chord suited to the focused surface's class, falling
// back to a clipboard-only result if that attempt is impossible or fails.
func (d *TextDelivery) Deliver(ctx context.Context, text string, surface SurfaceClass) (Result, error) {
	if err := d.Clipboard.SetText(ctx, text); err != nil {
		return Result{}, err
	}

	session := SessionUnknown
	if d.Detector != nil {
		session = d.Detector.SessionType()
	}

	var executor PasteExecutor
	switch session {
	case SessionWayland:
		executor = d.Portal
	case SessionX11:
		executor = d.X11
	}

	if executor == nil {
		return Result{Pasted: false, Reason: d.noToolReason(session)}, nil
	}

	chord := ChordFor(surface, d.TerminalChord)
	if err := executor.Paste(ctx, chord); err != nil {
		return Result{Pasted: false, Reason: ReasonSurfaceRefused}, nil
	}
	return Result{Pasted: true}, nil
}

func (d *TextDelivery) noToolReason(session SessionType) ClipboardOnlyReason {
	if session == SessionUnknown {
		return ReasonUnknownSession
	}
	return ReasonNoPasteTool
}
