package corrector

import (
	"fmt"
	"strings"
	"unicode"
)

// All is the rule-set wildcard selecting every rule enabled by default.
const All = "ALL"

// Catalog is the fixed, ordered collection of registered rules. It is
// immutable after NewCatalog returns.
type Catalog struct {
	rules  []Rule
	byName map[string]int
}

// NewCatalog registers rules in the given order and rejects duplicate names.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{
		rules:  make([]Rule, 0, len(rules)),
		byName: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		if r == nil {
			continue
		}
		name := r.Name()
		if err := validateName(name); err != nil {
			return nil, &ConfigError{Rule: name, Err: err}
		}
		if _, dup := c.byName[name]; dup {
			return nil, &ConfigError{Rule: name, Err: ErrDuplicateRule}
		}
		c.byName[name] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Rules returns the catalog in registration order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Len returns the number of registered rules.
func (c *Catalog) Len() int { return len(c.rules) }

// Lookup returns the rule registered under name.
func (c *Catalog) Lookup(name string) (Rule, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.rules[i], true
}

// RuleSet is the part of the user configuration that selects and ranks rules.
type RuleSet struct {
	// Enabled lists rule names; All selects every rule enabled by default.
	Enabled []string
	// Excluded always wins over Enabled.
	Excluded []string
	// Priority overrides rule priorities by name.
	Priority map[string]int
}

// DefaultRuleSet enables every rule that is enabled by default.
func DefaultRuleSet() RuleSet {
	return RuleSet{Enabled: []string{All}}
}

// resolvedRule is a catalog rule selected for evaluation.
type resolvedRule struct {
	rule     Rule
	priority int
}

// Resolution is the outcome of resolving a RuleSet against a Catalog.
type Resolution struct {
	rules []resolvedRule
	// Unknown lists enabled or excluded names the catalog does not contain.
	Unknown []string
}

// Names returns the active rule names in catalog order.
func (r *Resolution) Names() []string {
	out := make([]string, 0, len(r.rules))
	for _, rr := range r.rules {
		out = append(out, rr.rule.Name())
	}
	return out
}

// Priority returns the effective priority of an active rule.
func (r *Resolution) Priority(name string) (int, bool) {
	for _, rr := range r.rules {
		if rr.rule.Name() == name {
			return rr.priority, true
		}
	}
	return 0, false
}

// Resolve computes the effective rules in catalog order: All expands to the
// rules enabled by default, explicitly named rules are added regardless of
// their default, and excluded names are removed last.
func (c *Catalog) Resolve(set RuleSet) (*Resolution, error) {
	if err := validateRuleSet(set); err != nil {
		return nil, err
	}
	all := false
	enabled := make(map[string]bool, len(set.Enabled))
	for _, name := range set.Enabled {
		if name == All {
			all = true
			continue
		}
		enabled[name] = true
	}
	excluded := make(map[string]bool, len(set.Excluded))
	for _, name := range set.Excluded {
		excluded[name] = true
	}

	res := &Resolution{}
	for _, list := range [][]string{set.Enabled, set.Excluded} {
		for _, name := range list {
			if name == All {
				continue
			}
			if _, ok := c.byName[name]; !ok {
				res.Unknown = append(res.Unknown, name)
			}
		}
	}
	for _, r := range c.rules {
		name := r.Name()
		if excluded[name] {
			continue
		}
		if !enabled[name] && !(all && r.EnabledByDefault()) {
			continue
		}
		priority := r.Priority()
		if p, ok := set.Priority[name]; ok {
			priority = p
		}
		res.rules = append(res.rules, resolvedRule{rule: r, priority: priority})
	}
	return res, nil
}

func validateRuleSet(set RuleSet) error {
	for _, name := range set.Enabled {
		if err := validateName(name); err != nil {
			return &ConfigError{Rule: name, Err: err}
		}
	}
	for _, name := range set.Excluded {
		if name == All {
			return &ConfigError{Rule: name, Err: fmt.Errorf("%w: %s cannot be excluded", ErrInvalidRuleSet, All)}
		}
		if err := validateName(name); err != nil {
			return &ConfigError{Rule: name, Err: err}
		}
	}
	for name := range set.Priority {
		if err := validateName(name); err != nil {
			return &ConfigError{Rule: name, Err: err}
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty rule name", ErrInvalidRuleSet)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: rule name contains whitespace", ErrInvalidRuleSet)
	}
	return nil
}
