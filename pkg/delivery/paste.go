package delivery

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/godbus/dbus/v5"
)

// PasteExecutor sends one synthetic paste chord to the foreground surface.
// Implementations must attempt the chord exactly once and return an error
// (never retry internally) so TextDelivery's "paste attempted at most once"
// invariant holds regardless of which executor is wired.
type PasteExecutor interface {
	Paste(ctx context.Context, chord string) error
}

// portalDest/portalPath/portalIface name the RemoteDesktop interface of
// the freedesktop desktop portal.
const (
	portalDest  = "org.freedesktop.portal.Desktop"
	portalPath  = "/org/freedesktop/portal/desktop"
	portalIface = "org.freedesktop.portal.RemoteDesktop"
)

// keycodeForChord maps the two default paste chords to Linux evdev
// keycodes, since the portal's NotifyKeyboardKeycode call takes raw
// keycodes rather than chord strings. A chord with no entry here (such as
// a custom delivery.terminal_paste_chord) makes Paste return an error.
var keycodeForChord = map[string][]int32{
	DefaultPasteChord:         {29, 47},  // KEY_LEFTCTRL, KEY_V
	DefaultTerminalPasteChord: {42, 110}, // KEY_LEFTSHIFT, KEY_INSERT
}

// PortalPasteExecutor sends a synthetic paste chord through the
// xdg-desktop-portal RemoteDesktop interface, the sanctioned cross-desktop
// way to inject input under Wayland (direct evdev/uinput access is not
// normally available to an unprivileged session process).
type PortalPasteExecutor struct {
	conn       *dbus.Conn
	sessionObj dbus.ObjectPath
}

// NewPortalPasteExecutor dials the session bus. sessionObj is the
// RemoteDesktop session handle obtained once at startup via
// CreateSession/SelectDevices/Start on the portal; its acquisition belongs
// to the host, so it is accepted here as an opaque, pre-established handle
// rather than negotiated inline.
func NewPortalPasteExecutor(sessionObj dbus.ObjectPath) (*PortalPasteExecutor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("delivery: connect session bus: %w", err)
	}
	return &PortalPasteExecutor{conn: conn, sessionObj: sessionObj}, nil
}

func (p *PortalPasteExecutor) Paste(ctx context.Context, chord string) error {
	keys, ok := keycodeForChord[chord]
	if !ok {
		return fmt.Errorf("delivery: no keycode mapping for chord %q", chord)
	}
	obj := p.conn.Object(portalDest, portalPath)
	for _, kc := range keys {
		call := obj.CallWithContext(ctx, portalIface+".NotifyKeyboardKeycode", 0, p.sessionObj, map[string]dbus.Variant{}, kc, uint32(1))
		if call.Err != nil {
			return fmt.Errorf("delivery: notify keycode press %d: %w", kc, call.Err)
		}
	}
	for i := len(keys) - 1; i >= 0; i-- {
		call := obj.CallWithContext(ctx, portalIface+".NotifyKeyboardKeycode", 0, p.sessionObj, map[string]dbus.Variant{}, keys[i], uint32(0))
		if call.Err != nil {
			return fmt.Errorf("delivery: notify keycode release %d: %w", keys[i], call.Err)
		}
	}
	return nil
}

func (p *PortalPasteExecutor) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// XDoToolPasteExecutor shells out to xdotool under X11, where the portal
// path is unavailable (X11 sessions are not brokered by
// xdg-desktop-portal's RemoteDesktop interface the same way).
type XDoToolPasteExecutor struct {
	Binary string // defaults to "xdotool"
}

func NewXDoToolPasteExecutor() *XDoToolPasteExecutor {
	return &XDoToolPasteExecutor{Binary: "xdotool"}
}

func (x *XDoToolPasteExecutor) Paste(ctx context.Context, chord string) error {
	bin := x.Binary
	if bin == "" {
		bin = "xdotool"
	}
	keys := xdotoolKeys(chord)
	cmd := exec.CommandContext(ctx, bin, "key", keys)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("delivery: xdotool key %s: %w", keys, err)
	}
	return nil
}

func xdotoolKeys(chord string) string {
	if chord == DefaultTerminalPasteChord {
		return "shift+Insert"
	}
	return "ctrl+v"
}
