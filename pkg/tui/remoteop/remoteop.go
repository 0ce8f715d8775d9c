// Package remoteop runs remote mutations off the Bubble Tea event loop.
package remoteop

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	"tableflip.dev/notes/pkg/app"
)

// Timeout bounds a single remote operation.
const Timeout = 10 * time.Second

// Run returns a command that executes op in the background. Failures are
// logged at warn and otherwise dropped; the command never produces a message.
func Run(ctx context.Context, op app.Op, log zerolog.Logger, action string) tea.Cmd {
	if op == nil {
		return nil
	}
	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(ctx, Timeout)
		defer cancel()
		if err := op(opCtx); err != nil {
			log.Warn().Err(err).Str("action", action).Msg("remote operation failed")
		}
		return nil
	}
}
