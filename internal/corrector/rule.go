package corrector

import "context"

// DefaultPriority is the priority of a rule that does not set one.
const DefaultPriority = 1000

// Rule is one independent correction heuristic. Implementations must be
// stateless and safe for concurrent use: Match and NewCommand may run on
// several goroutines at once and must not mutate anything outside the rule.
type Rule interface {
	// Name is the unique, stable identifier of the rule within a catalog.
	Name() string

	// Match reports whether the rule can fix cmd. It must tolerate any script
	// and output, including empty ones.
	Match(cmd Command) bool

	// NewCommand returns replacement scripts, best first. It is only called
	// after Match returned true for the same command.
	NewCommand(cmd Command) ([]string, error)

	// Priority ranks the rule's candidates; lower sorts first.
	Priority() int

	// EnabledByDefault reports whether "ALL" in a rule set includes the rule.
	EnabledByDefault() bool

	// RequiresOutput reports whether Match needs captured output. Rules that
	// do are skipped without calling Match when the output is empty.
	RequiresOutput() bool
}

// SideEffect runs after the user confirmed script as the fix for cmd.
type SideEffect func(ctx context.Context, cmd Command, script string) error

// SideEffecter is implemented by rules that attach a post-selection action to
// their candidates.
type SideEffecter interface {
	SideEffect(ctx context.Context, cmd Command, script string) error
}

// Definition is a Rule assembled from functions, the usual way built-in
// rules are declared. Zero values give the defaults: DefaultPriority,
// enabled by default, output required.
type Definition struct {
	// RuleName is the unique identifier (e.g. "git_push").
	RuleName string

	// MatchFunc is required.
	MatchFunc func(cmd Command) bool

	// NewCommandFunc is required.
	NewCommandFunc func(cmd Command) ([]string, error)

	// SideEffectFunc is optional.
	SideEffectFunc SideEffect

	// RulePriority overrides DefaultPriority when non-zero, or always when
	// ExplicitPriority is set.
	RulePriority int

	// ExplicitPriority makes a zero RulePriority mean priority 0.
	ExplicitPriority bool

	// DisabledByDefault excludes the rule from "ALL".
	DisabledByDefault bool

	// OutputOptional lets the rule match commands with empty output.
	OutputOptional bool
}

var _ Rule = (*Definition)(nil)

func (d *Definition) Name() string { return d.RuleName }

func (d *Definition) Match(cmd Command) bool {
	if d.MatchFunc == nil {
		return false
	}
	return d.MatchFunc(cmd)
}

func (d *Definition) NewCommand(cmd Command) ([]string, error) {
	if d.NewCommandFunc == nil {
		return nil, nil
	}
	return d.NewCommandFunc(cmd)
}

func (d *Definition) Priority() int {
	if d.RulePriority == 0 && !d.ExplicitPriority {
		return DefaultPriority
	}
	return d.RulePriority
}

func (d *Definition) EnabledByDefault() bool { return !d.DisabledByDefault }

func (d *Definition) RequiresOutput() bool { return !d.OutputOptional }

// SideEffect runs SideEffectFunc, if any.
func (d *Definition) SideEffect(ctx context.Context, cmd Command, script string) error {
	if d.SideEffectFunc == nil {
		return nil
	}
	return d.SideEffectFunc(ctx, cmd, script)
}

// sideEffectOf returns the post-selection action bound to r, or nil when the
// rule has none.
func sideEffectOf(r Rule) SideEffect {
	if d, ok := r.(*Definition); ok {
		return d.SideEffectFunc
	}
	if s, ok := r.(SideEffecter); ok {
		return s.SideEffect
	}
	return nil
}

// CorrectedCommand is one ranked candidate.
type CorrectedCommand struct {
	Script   string
	Priority int
	// Rule names the rule that proposed the script.
	Rule string
	// SideEffect is nil when the candidate has no post-selection action.
	SideEffect SideEffect
}

// HasSideEffect reports whether choosing c runs an extra action.
func (c CorrectedCommand) HasSideEffect() bool { return c.SideEffect != nil }

// RunSideEffect invokes the bound action; it is a no-op without one.
func (c CorrectedCommand) RunSideEffect(ctx context.Context, cmd Command) error {
	if c.SideEffect == nil {
		return nil
	}
	return c.SideEffect(ctx, cmd, c.Script)
}
