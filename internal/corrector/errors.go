package corrector

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrDuplicateRule is returned when two catalog rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// ErrInvalidRuleSet is returned for malformed enabled/excluded rule lists.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrRulePanic marks a rule that panicked during evaluation.
	ErrRulePanic = errors.New("rule panicked")

	// ErrRuleTimeout marks a rule abandoned after exceeding its time budget.
	ErrRuleTimeout = errors.New("rule exceeded time budget")
)

// ConfigError is fatal and only produced at startup, before any cycle runs.
type ConfigError struct {
	// Rule is the offending rule name, when there is one.
	Rule string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %v: %q", e.Err, e.Rule)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RuleError is a recoverable failure of one rule in one cycle.
type RuleError struct {
	Rule string
	// Stage is "match", "new_command", or "evaluate" when the rule ran
	// out of time.
	Stage string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s (%s): %v", e.Rule, e.Stage, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }
