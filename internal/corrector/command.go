package corrector

import (
	"strings"

	"github.com/mattn/go-shellwords"
)

// Command is the captured failed invocation: the script the user typed and
// the combined stdout/stderr it produced. It is immutable once built.
type Command struct {
	script string
	output string
	parts  []string
}

// NewCommand captures script and output. Parts are tokenized once here so
// rules evaluated in parallel share the same read-only slice.
func NewCommand(script, output string) Command {
	return Command{
		script: script,
		output: output,
		parts:  splitScript(script),
	}
}

// Script returns the command line as typed.
func (c Command) Script() string { return c.script }

// Output returns the combined output captured for the script.
func (c Command) Output() string { return c.output }

// Parts returns the shell words of the script. Callers must not modify the
// returned slice.
func (c Command) Parts() []string { return c.parts }

// Update returns a copy of the command with a different script and the same
// output.
func (c Command) Update(script string) Command {
	return NewCommand(script, c.output)
}

func splitScript(script string) []string {
	trimmed := strings.TrimSpace(script)
	if trimmed == "" {
		return nil
	}
	parser := shellwords.NewParser()
	parts, err := parser.Parse(trimmed)
	// The parser stops at the first control operator (&&, |, >) and fails on
	// unbalanced quotes, both common in typos; plain fields keep every word.
	if err != nil || parser.Position >= 0 || len(parts) == 0 {
		return strings.Fields(trimmed)
	}
	return parts
}
