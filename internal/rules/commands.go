package rules

import (
	"path/filepath"
	"strings"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/fuzzy"
	"github.com/animeshkundu/oops/internal/shell"
)

// sudoPatterns are lowercase fragments of "you need root" errors.
var sudoPatterns = []string{
	"permission denied",
	"eacces",
	"pkg: insufficient privileges",
	"you cannot perform this operation unless you are root",
	"non-root users cannot",
	"operation not permitted",
	"root privilege",
	"this command has to be run under the root user.",
	"this operation requires root.",
	"requested operation requires superuser privilege",
	"must be run as root",
	"must run as root",
	"must be superuser",
	"must be root",
	"need to be root",
	"need root",
	"needs to be run as root",
	"only root can ",
	"you don't have access to the history db.",
	"authentication is required",
	"edspermissionerror",
	"you don't have write permissions",
	"use `sudo`",
	"sudorequirederror",
	"error: insufficient privileges",
}

func sudoRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "sudo",
		MatchFunc: func(cmd corrector.Command) bool {
			if parts := cmd.Parts(); len(parts) > 0 && parts[0] == "sudo" {
				return false
			}
			if strings.Contains(cmd.Script(), "&&") && lowerOutputContains(cmd, "permission denied") {
				return true
			}
			return lowerOutputContains(cmd, sudoPatterns...)
		},
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			script := cmd.Script()
			if strings.Contains(script, "&&") || strings.Contains(script, ">") {
				return single("sudo sh -c " + shell.Quote(script))
			}
			return single("sudo " + script)
		},
	}
}

func pythonCommandRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "python_command",
		MatchFunc: func(cmd corrector.Command) bool {
			parts := cmd.Parts()
			return len(parts) > 0 && strings.HasSuffix(parts[0], ".py") &&
				lowerOutputContains(cmd, "permission denied", "command not found")
		},
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single("python " + cmd.Script())
		},
	}
}

func goRunRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "go_run",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			parts := cmd.Parts()
			return len(parts) == 3 && parts[1] == "run" &&
				!strings.HasPrefix(parts[2], "-") &&
				filepath.Ext(parts[2]) == "" &&
				!strings.HasSuffix(parts[2], "/") &&
				!strings.HasPrefix(parts[2], ".")
		}, "go"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single(cmd.Script() + ".go")
		},
		OutputOptional: true,
	}
}

// noCommandRule suggests the closest executables on PATH for a misspelled
// program name.
func noCommandRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "no_command",
		MatchFunc: func(cmd corrector.Command) bool {
			parts := cmd.Parts()
			if len(parts) == 0 {
				return false
			}
			if !lowerOutputContains(cmd, "not found", "command not found", "unknown command", "is not recognized") {
				return false
			}
			if env.Which.Exists(parts[0]) {
				return false
			}
			return len(fuzzy.CloseMatches(parts[0], env.Which.Executables(), 1, fuzzy.DefaultCutoff)) > 0
		},
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			broken := cmd.Parts()[0]
			matches := fuzzy.CloseMatches(broken, env.Which.Executables(), env.NumCloseMatches, fuzzy.DefaultCutoff)
			out := make([]string, 0, len(matches))
			rest := strings.TrimPrefix(cmd.Script(), broken)
			if !strings.HasPrefix(cmd.Script(), broken) {
				rest = quoteArgs(cmd.Parts()[1:])
			}
			for _, m := range matches {
				out = append(out, m+rest)
			}
			return out, nil
		},
		RulePriority: 3000,
	}
}
