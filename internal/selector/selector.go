// Package selector drives the confirmation of one corrected command.
//
// A Machine starts in NoCandidates or Presenting. While Presenting the ranked
// list can be navigated; Confirm (or AutoConfirm, which takes the first
// candidate) moves to Selected, and Finish runs the chosen candidate's side
// effect, if any, before Completed. Cancel is accepted while Presenting or
// while the side effect runs. Only Completed yields a script.
package selector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/animeshkundu/oops/internal/corrector"
)

// State is a step of the selection lifecycle.
type State int

const (
	NoCandidates State = iota
	Presenting
	Selected
	SideEffectRunning
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case NoCandidates:
		return "no_candidates"
	case Presenting:
		return "presenting"
	case Selected:
		return "selected"
	case SideEffectRunning:
		return "side_effect_running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == NoCandidates || s == Completed || s == Cancelled
}

var (
	// ErrInvalidTransition is returned when an operation does not apply to
	// the current state.
	ErrInvalidTransition = errors.New("invalid selection transition")

	// ErrCancelled is returned by prompters when the user aborts.
	ErrCancelled = errors.New("selection cancelled")
)

// DefaultSideEffectTimeout bounds side effects when no option overrides it.
const DefaultSideEffectTimeout = 30 * time.Second

// Option configures a Machine.
type Option func(*Machine)

// WithLogger receives side-effect warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithSideEffectTimeout bounds the chosen candidate's side effect. Zero
// disables the bound.
func WithSideEffectTimeout(d time.Duration) Option {
	return func(m *Machine) { m.sideEffectTimeout = d }
}

// Machine is safe for concurrent use so a signal handler can Cancel while
// the prompt or side effect is in progress.
type Machine struct {
	mu sync.Mutex

	cmd        corrector.Command
	candidates []corrector.CorrectedCommand
	state      State
	index      int
	chosen     corrector.CorrectedCommand

	stopSideEffect    context.CancelFunc
	sideEffectTimeout time.Duration
	logger            *zap.Logger
}

// New starts a selection over the ranked candidates for cmd.
func New(cmd corrector.Command, candidates []corrector.CorrectedCommand, opts ...Option) *Machine {
	m := &Machine{
		cmd:               cmd,
		candidates:        append([]corrector.CorrectedCommand(nil), candidates...),
		state:             Presenting,
		sideEffectTimeout: DefaultSideEffectTimeout,
		logger:            zap.NewNop(),
	}
	if len(m.candidates) == 0 {
		m.state = NoCandidates
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Command returns the command being corrected.
func (m *Machine) Command() corrector.Command { return m.cmd }

// Candidates returns the full ranked list.
func (m *Machine) Candidates() []corrector.CorrectedCommand {
	return append([]corrector.CorrectedCommand(nil), m.candidates...)
}

// Index returns the highlighted position.
func (m *Machine) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Current returns the highlighted candidate.
func (m *Machine) Current() (corrector.CorrectedCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.candidates) == 0 {
		return corrector.CorrectedCommand{}, false
	}
	return m.candidates[m.index], true
}

// Next highlights the following candidate, wrapping around.
func (m *Machine) Next() error {
	return m.move(1)
}

// Previous highlights the preceding candidate, wrapping around.
func (m *Machine) Previous() error {
	return m.move(-1)
}

func (m *Machine) move(delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Presenting {
		return m.invalid("navigate")
	}
	n := len(m.candidates)
	m.index = ((m.index+delta)%n + n) % n
	return nil
}

// Confirm selects the highlighted candidate.
func (m *Machine) Confirm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Presenting {
		return m.invalid("confirm")
	}
	m.chosen = m.candidates[m.index]
	m.state = Selected
	return nil
}

// AutoConfirm selects the first candidate without waiting for input.
func (m *Machine) AutoConfirm() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Presenting {
		return m.invalid("auto-confirm")
	}
	m.index = 0
	m.chosen = m.candidates[0]
	m.state = Selected
	return nil
}

// Cancel aborts the selection. A running side effect has its context
// cancelled.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Presenting:
		m.state = Cancelled
		return nil
	case SideEffectRunning:
		m.state = Cancelled
		if m.stopSideEffect != nil {
			m.stopSideEffect()
		}
		return nil
	default:
		return m.invalid("cancel")
	}
}

// Finish completes a selection: it runs the chosen candidate's side effect,
// when there is one, and moves to Completed. Side-effect failures are logged
// and do not prevent completion; cancellation while it runs ends in
// Cancelled.
func (m *Machine) Finish(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Selected {
		err := m.invalid("finish")
		m.mu.Unlock()
		return err
	}
	chosen := m.chosen
	if !chosen.HasSideEffect() {
		m.state = Completed
		m.mu.Unlock()
		return nil
	}
	var (
		runCtx context.Context
		stop   context.CancelFunc
	)
	if m.sideEffectTimeout > 0 {
		runCtx, stop = context.WithTimeout(ctx, m.sideEffectTimeout)
	} else {
		runCtx, stop = context.WithCancel(ctx)
	}
	m.stopSideEffect = stop
	m.state = SideEffectRunning
	m.mu.Unlock()
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- runSideEffect(runCtx, chosen, m.cmd)
	}()

	var err error
	select {
	case err = <-done:
	case <-runCtx.Done():
		err = runCtx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopSideEffect = nil
	if m.state == Cancelled || ctx.Err() != nil {
		m.state = Cancelled
		return nil
	}
	if err != nil {
		m.logger.Warn("side effect failed",
			zap.String("rule", chosen.Rule),
			zap.String("script", chosen.Script),
			zap.Error(err))
	}
	m.state = Completed
	return nil
}

func runSideEffect(ctx context.Context, cc corrector.CorrectedCommand, cmd corrector.Command) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("side effect panicked: %v", p)
		}
	}()
	return cc.RunSideEffect(ctx, cmd)
}

// Result returns the final script. ok is false unless the selection
// completed.
func (m *Machine) Result() (script string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Completed {
		return "", false
	}
	return m.chosen.Script, true
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, m.state)
}
