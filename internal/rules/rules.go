// Package rules holds the built-in correction rules.
//
// Rules are declared as corrector.Definition values by small constructors and
// assembled in a fixed order, which is the catalog order the corrector uses to
// break priority ties.
package rules

import (
	"sync"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/fuzzy"
	"github.com/animeshkundu/oops/internal/shell"
	"github.com/animeshkundu/oops/internal/which"
)

// Env carries what rules need from the outside world. Rules only read from
// it, so one Env may back many concurrent evaluations.
type Env struct {
	// Which resolves and lists executables on PATH.
	Which *which.Cache
	// Shell joins generated command chains.
	Shell shell.Shell
	// NumCloseMatches caps fuzzy suggestions per rule.
	NumCloseMatches int
}

func (e Env) withDefaults() Env {
	if e.Which == nil {
		e.Which = which.New()
	}
	if e.Shell == nil {
		e.Shell = shell.Bash()
	}
	if e.NumCloseMatches <= 0 {
		e.NumCloseMatches = fuzzy.DefaultLimit
	}
	return e
}

// Builtin returns the built-in rules in catalog order.
func Builtin(env Env) []corrector.Rule {
	env = env.withDefaults()
	return []corrector.Rule{
		sudoRule(),
		cdParentRule(),
		cdMkdirRule(env),
		mkdirPRule(),
		touchRule(env),
		rmDirRule(),
		cpOmittingDirectoryRule(),
		grepRecursiveRule(),
		lsAllRule(),
		slLsRule(),
		chmodXRule(env),
		pythonCommandRule(),
		goRunRule(),
		gitNotCommandRule(env),
		gitPushRule(),
		gitAddRule(env),
		sshKnownHostsRule(),
		noCommandRule(env),
	}
}

// NewCatalog builds a catalog of the built-in rules bound to env.
func NewCatalog(env Env) (*corrector.Catalog, error) {
	return corrector.NewCatalog(Builtin(env)...)
}

var (
	initOnce    sync.Once
	initCatalog *corrector.Catalog
	initErr     error
)

// Init builds the built-in catalog bound to env. It runs once per process;
// later calls return the first result and ignore env.
func Init(env Env) (*corrector.Catalog, error) {
	initOnce.Do(func() {
		initCatalog, initErr = NewCatalog(env)
	})
	return initCatalog, initErr
}
