// Package ui renders the interactive candidate picker on the terminal.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/animeshkundu/oops/internal/selector"
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Up, k.Down, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeys() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "ctrl+n", "tab"),
			key.WithHelp("↓", "next"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "esc", "q"),
			key.WithHelp("ctrl+c", "abort"),
		),
	}
}

type styles struct {
	Script     lipgloss.Style
	SideEffect lipgloss.Style
	Position   lipgloss.Style
}

func newStyles(noColors bool) styles {
	if noColors {
		return styles{
			Script:     lipgloss.NewStyle(),
			SideEffect: lipgloss.NewStyle(),
			Position:   lipgloss.NewStyle(),
		}
	}
	return styles{
		Script:     lipgloss.NewStyle().Bold(true),
		SideEffect: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Position:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

type model struct {
	machine *selector.Machine
	keys    keyMap
	help    help.Model
	styles  styles
	done    bool
}

func newModel(m *selector.Machine, noColors bool) model {
	h := help.New()
	h.ShortSeparator = " / "
	if noColors {
		h.Styles = help.Styles{}
	}
	return model{
		machine: m,
		keys:    defaultKeys(),
		help:    h,
		styles:  newStyles(noColors),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = t.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(t, m.keys.Up):
			_ = m.machine.Previous()
		case key.Matches(t, m.keys.Down):
			_ = m.machine.Next()
		case key.Matches(t, m.keys.Confirm):
			_ = m.machine.Confirm()
			m.done = true
			return m, tea.Quit
		case key.Matches(t, m.keys.Cancel):
			_ = m.machine.Cancel()
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	cur, ok := m.machine.Current()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Script.Render(cur.Script))
	if cur.HasSideEffect() {
		b.WriteString(" " + m.styles.SideEffect.Render("(+side effect)"))
	}
	if n := len(m.machine.Candidates()); n > 1 {
		b.WriteString(" " + m.styles.Position.Render(fmt.Sprintf("(%d/%d)", m.machine.Index()+1, n)))
	}
	b.WriteString(" [" + m.help.View(m.keys) + "]")
	return b.String()
}

// Picker is a selector.Prompter backed by a bubbletea program.
type Picker struct {
	// Input defaults to the controlling terminal.
	Input io.Reader
	// Output defaults to stderr so stdout carries only the chosen script.
	Output   io.Writer
	NoColors bool
}

var _ selector.Prompter = (*Picker)(nil)

// Prompt runs the picker until the user confirms or aborts.
func (p *Picker) Prompt(ctx context.Context, m *selector.Machine) error {
	in := p.Input
	if in == nil {
		tty, err := OpenTTY()
		if err != nil {
			return err
		}
		defer tty.Close()
		in = tty
	}
	out := p.Output
	if out == nil {
		out = os.Stderr
	}
	prog := tea.NewProgram(newModel(m, p.NoColors),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := prog.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && !fm.done {
		return selector.ErrCancelled
	}
	return nil
}

// OpenTTY opens the controlling terminal for reading keys while stdin and
// stdout are captured by the shell alias.
func OpenTTY() (*os.File, error) {
	f, err := os.Open("/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	if !term.IsTerminal(int(f.Fd())) {
		f.Close()
		return nil, fmt.Errorf("open terminal: /dev/tty is not a terminal")
	}
	return f, nil
}

// Interactive reports whether stderr is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
