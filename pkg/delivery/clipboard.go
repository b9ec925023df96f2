package delivery

import (
	"context"

	"github.com/atotto/clipboard"

	"github.com/keyscribe/dictation-engine/pkg/engineerr"
)

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// SystemClipboard is the atotto/clipboard-backed implementation.
type SystemClipboard struct{}

func NewSystemClipboard() *SystemClipboard { return &SystemClipboard{} }

// SetText ignores ctx: atotto/clipboard's WriteAll is a blocking syscall
// with no cancellation hook, matching the library's actual API surface.
func (SystemClipboard) SetText(ctx context.Context, text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return engineerr.New(engineerr.KindInternal, err)
	}
	return nil
}
