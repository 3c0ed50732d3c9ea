// Package shell holds the per-shell pieces around a correction cycle: the
// alias that feeds the previous command in and evals the fix, command
// joining for rules, and output capture.
package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedShell is returned by Detect for shells without integration.
var ErrUnsupportedShell = errors.New("unsupported shell")

// Shell is the shell-specific syntax a correction cycle needs.
type Shell interface {
	// Name is the shell's short name ("bash", "zsh", "fish").
	Name() string
	// Binary is the executable used to re-run commands.
	Binary() string
	// Alias returns the shell function named alias that invokes binary.
	Alias(alias, binary string) string
	// And joins commands so each runs only if the previous one succeeded.
	And(cmds ...string) string
	// Or joins commands so each runs only if the previous one failed.
	Or(cmds ...string) string
}

// Detect returns the integration for name. An empty name falls back to
// $OOPS_SHELL, then the basename of $SHELL, then bash.
func Detect(name string) (Shell, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(os.Getenv("OOPS_SHELL"))
	}
	if name == "" {
		name = filepath.Base(strings.TrimSpace(os.Getenv("SHELL")))
	}
	switch name {
	case "", ".", "/", "bash", "sh":
		return Bash(), nil
	case "zsh":
		return Zsh(), nil
	case "fish":
		return Fish(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShell, name)
	}
}

type posix struct {
	name       string
	historyAdd string
}

// Bash returns the bash integration.
func Bash() Shell { return posix{name: "bash", historyAdd: "history -s"} }

// Zsh returns the zsh integration.
func Zsh() Shell { return posix{name: "zsh", historyAdd: "print -s"} }

func (p posix) Name() string   { return p.name }
func (p posix) Binary() string { return lookupShell(p.name) }

func (p posix) Alias(alias, binary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s () {\n", alias)
	b.WriteString("    local oops_cmd\n")
	fmt.Fprintf(&b, "    oops_cmd=\"$(OOPS_SHELL=%s OOPS_ALIAS=%s OOPS_HISTORY=\"$(fc -ln -10)\" command %s fix \"$@\")\" || return\n",
		p.name, alias, Quote(binary))
	b.WriteString("    [ -n \"$oops_cmd\" ] || return\n")
	fmt.Fprintf(&b, "    %s \"$oops_cmd\"\n", p.historyAdd)
	b.WriteString("    eval \"$oops_cmd\"\n")
	b.WriteString("}\n")
	return b.String()
}

func (p posix) And(cmds ...string) string { return strings.Join(cmds, " && ") }
func (p posix) Or(cmds ...string) string  { return strings.Join(cmds, " || ") }

type fish struct{}

// Fish returns the fish integration.
func Fish() Shell { return fish{} }

func (fish) Name() string   { return "fish" }
func (fish) Binary() string { return lookupShell("fish") }

func (fish) Alias(alias, binary string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "function %s -d 'Correct your previous console command'\n", alias)
	b.WriteString("    set -l oops_previous $history[1]\n")
	fmt.Fprintf(&b, "    set -l oops_cmd (env OOPS_SHELL=fish OOPS_ALIAS=%s OOPS_HISTORY=$oops_previous %s fix $argv | string collect)\n",
		alias, Quote(binary))
	b.WriteString("    if test -n \"$oops_cmd\"\n")
	b.WriteString("        builtin history append -- $oops_cmd\n")
	b.WriteString("        eval $oops_cmd\n")
	b.WriteString("    end\n")
	b.WriteString("end\n")
	return b.String()
}

func (fish) And(cmds ...string) string { return strings.Join(cmds, "; and ") }
func (fish) Or(cmds ...string) string  { return strings.Join(cmds, "; or ") }

// Quote single-quotes s for POSIX shells and fish.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuoting) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("@%+=:,./-_", r)
}

// LastCommand picks the most recent history line that is not an invocation
// of the alias itself. history is newest-last, one command per line, as
// printed by `fc -ln`.
func LastCommand(history, alias string) string {
	lines := strings.Split(strings.ReplaceAll(history, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if alias != "" {
			first := strings.Fields(line)[0]
			if first == alias {
				continue
			}
		}
		return line
	}
	return ""
}

func lookupShell(name string) string {
	if sh := strings.TrimSpace(os.Getenv("SHELL")); sh != "" && filepath.Base(sh) == name {
		return sh
	}
	return name
}
