// Package corrector ranks corrected commands for a failed shell command.
//
// A Corrector evaluates the resolved rules of a Catalog against one Command,
// wraps each proposed script in a CorrectedCommand, removes duplicate scripts
// (best priority wins) and stable-sorts the rest by priority. Rules run in
// parallel, but the result only depends on catalog order, never on which
// rule finished first.
package corrector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option configures a Corrector.
type Option func(*Corrector)

// WithLogger routes per-rule diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Corrector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConcurrency bounds the number of rules evaluated at once. Values <= 0
// use runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(c *Corrector) { c.concurrency = n }
}

// WithRuleTimeout abandons a rule's contribution when it runs longer than d.
// Zero disables the budget.
func WithRuleTimeout(d time.Duration) Option {
	return func(c *Corrector) { c.ruleTimeout = d }
}

// Corrector turns a Command into ranked CorrectedCommands.
type Corrector struct {
	resolution  *Resolution
	logger      *zap.Logger
	concurrency int
	ruleTimeout time.Duration
}

// New resolves set against catalog. A *ConfigError is fatal for the caller:
// no cycle may run with an invalid rule set.
func New(catalog *Catalog, set RuleSet, opts ...Option) (*Corrector, error) {
	if catalog == nil {
		return nil, &ConfigError{Err: fmt.Errorf("%w: nil catalog", ErrInvalidRuleSet)}
	}
	c := &Corrector{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency <= 0 {
		c.concurrency = runtime.NumCPU()
	}
	res, err := catalog.Resolve(set)
	if err != nil {
		return nil, err
	}
	for _, name := range res.Unknown {
		c.logger.Warn("unknown rule in configuration", zap.String("rule", name))
	}
	c.resolution = res
	return c, nil
}

// Rules returns the names of the active rules in evaluation order.
func (c *Corrector) Rules() []string { return c.resolution.Names() }

// Correct evaluates every active rule against cmd and returns the ranked,
// de-duplicated candidates. An empty result is not an error; the only error
// is ctx ending before evaluation completes.
func (c *Corrector) Correct(ctx context.Context, cmd Command) ([]CorrectedCommand, error) {
	rules := c.resolution.rules
	slots := make([][]CorrectedCommand, len(rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range rules {
		rr := rules[i]
		if rr.rule.RequiresOutput() && cmd.Output() == "" {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			scripts, err := c.evaluate(gctx, rr.rule, cmd)
			if err != nil {
				c.reportFailure(rr.rule.Name(), err)
				return nil
			}
			slots[i] = wrap(rr, scripts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var collected []CorrectedCommand
	for _, slot := range slots {
		collected = append(collected, slot...)
	}
	return Organize(collected), nil
}

// Organize ranks candidates given in catalog-then-candidate order: a stable
// sort by priority followed by removal of repeated scripts, which keeps the
// lowest priority per script with ties going to the first seen.
func Organize(candidates []CorrectedCommand) []CorrectedCommand {
	sorted := make([]CorrectedCommand, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	seen := make(map[string]struct{}, len(sorted))
	out := make([]CorrectedCommand, 0, len(sorted))
	for _, cc := range sorted {
		if _, dup := seen[cc.Script]; dup {
			continue
		}
		seen[cc.Script] = struct{}{}
		out = append(out, cc)
	}
	return out
}

func wrap(rr resolvedRule, scripts []string) []CorrectedCommand {
	if len(scripts) == 0 {
		return nil
	}
	effect := sideEffectOf(rr.rule)
	out := make([]CorrectedCommand, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, CorrectedCommand{
			Script:     s,
			Priority:   rr.priority,
			Rule:       rr.rule.Name(),
			SideEffect: effect,
		})
	}
	return out
}

// evaluate runs one rule under the per-rule budget. A rule that overruns is
// abandoned: its goroutine finishes in the background and the result is
// dropped.
func (c *Corrector) evaluate(ctx context.Context, r Rule, cmd Command) ([]string, error) {
	if c.ruleTimeout <= 0 {
		return invoke(r, cmd)
	}
	type outcome struct {
		scripts []string
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		scripts, err := invoke(r, cmd)
		done <- outcome{scripts: scripts, err: err}
	}()
	timer := time.NewTimer(c.ruleTimeout)
	defer timer.Stop()
	select {
	case o := <-done:
		return o.scripts, o.err
	case <-timer.C:
		return nil, &RuleError{Rule: r.Name(), Stage: "evaluate", Err: ErrRuleTimeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// invoke is the only place rule code is called from. Panics and errors come
// back as *RuleError so one broken rule cannot take down the cycle.
func invoke(r Rule, cmd Command) (scripts []string, err error) {
	stage := "match"
	defer func() {
		if p := recover(); p != nil {
			scripts = nil
			err = &RuleError{Rule: r.Name(), Stage: stage, Err: fmt.Errorf("%w: %v", ErrRulePanic, p)}
		}
	}()
	if !r.Match(cmd) {
		return nil, nil
	}
	stage = "new_command"
	scripts, err = r.NewCommand(cmd)
	if err != nil {
		return nil, &RuleError{Rule: r.Name(), Stage: stage, Err: err}
	}
	return scripts, nil
}

func (c *Corrector) reportFailure(rule string, err error) {
	switch {
	case errors.Is(err, ErrRuleTimeout):
		c.logger.Warn("slow rule abandoned", zap.String("rule", rule), zap.Duration("budget", c.ruleTimeout))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Debug("rule evaluation cancelled", zap.String("rule", rule))
	default:
		c.logger.Debug("rule failed", zap.String("rule", rule), zap.Error(err))
	}
}
