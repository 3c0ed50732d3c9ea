package selector

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Prompter lets the user choose while the machine is Presenting. It moves
// the machine with Next/Previous and ends with Confirm or Cancel; returning
// without doing either counts as a cancel.
type Prompter interface {
	Prompt(ctx context.Context, m *Machine) error
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, m *Machine) error

func (f PrompterFunc) Prompt(ctx context.Context, m *Machine) error { return f(ctx, m) }

// Run drives m to a terminal state and returns the final script, if any.
// With auto set the first candidate is taken without prompting; without a
// prompter the selection is cancelled.
func Run(ctx context.Context, m *Machine, p Prompter, auto bool) (string, bool) {
	if m.State() == NoCandidates {
		return "", false
	}
	switch {
	case auto:
		if err := m.AutoConfirm(); err != nil {
			m.logger.Debug("auto-confirm rejected", zap.Error(err))
		}
	case p != nil:
		if err := p.Prompt(ctx, m); err != nil && !errors.Is(err, ErrCancelled) {
			m.logger.Warn("prompt failed", zap.Error(err))
		}
	}
	if ctx.Err() != nil || m.State() == Presenting {
		_ = m.Cancel()
	}
	if m.State() == Selected {
		_ = m.Finish(ctx)
	}
	return m.Result()
}
