package ui

import (
	"bytes"
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/selector"
)

func newMachine(scripts ...string) *selector.Machine {
	list := make([]corrector.CorrectedCommand, 0, len(scripts))
	for _, s := range scripts {
		list = append(list, corrector.CorrectedCommand{Script: s, Priority: corrector.DefaultPriority})
	}
	return selector.New(corrector.NewCommand("git brnch", ""), list)
}

func press(t *testing.T, m model, msg tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPickerNavigation(t *testing.T) {
	machine := newMachine("git branch", "git branch -a")
	m := newModel(machine, true)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, machine.Index())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 0, machine.Index(), "wraps past the end")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, machine.Index())
	assert.Contains(t, m.View(), "git branch -a")
	assert.Contains(t, m.View(), "(2/2)")
}

func TestPickerConfirm(t *testing.T) {
	machine := newMachine("git branch", "git branch -a")
	m := newModel(machine, true)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	assert.True(t, m.done)
	assert.Empty(t, m.View())
	assert.Equal(t, selector.Selected, machine.State())

	require.NoError(t, machine.Finish(context.Background()))
	script, ok := machine.Result()
	assert.True(t, ok)
	assert.Equal(t, "git branch -a", script)
}

func TestPickerCancel(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		t.Run(msg.String(), func(t *testing.T) {
			machine := newMachine("git branch")
			m := newModel(machine, true)
			_, cmd := press(t, m, msg)
			assert.True(t, isQuit(cmd))
			assert.Equal(t, selector.Cancelled, machine.State())
		})
	}
}

func TestPickerViewMarksSideEffect(t *testing.T) {
	list := []corrector.CorrectedCommand{{
		Script:     "ssh host",
		SideEffect: func(context.Context, corrector.Command, string) error { return nil },
	}}
	m := newModel(selector.New(corrector.NewCommand("ssh host", ""), list), true)
	view := m.View()
	assert.Contains(t, view, "ssh host")
	assert.Contains(t, view, "(+side effect)")
	assert.NotContains(t, view, "(1/1)")
	assert.Contains(t, view, "enter")
}

func TestPickerPromptWithScriptedInput(t *testing.T) {
	machine := newMachine("git branch", "git branch -a")
	var out bytes.Buffer
	p := &Picker{Input: bytes.NewBufferString("j\r"), Output: &out, NoColors: true}
	err := p.Prompt(context.Background(), machine)
	require.NoError(t, err)
	assert.Equal(t, selector.Selected, machine.State())
	cur, ok := machine.Current()
	require.True(t, ok)
	assert.Equal(t, "git branch -a", cur.Script)
}
