package rules

import (
	"regexp"
	"strings"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/shell"
)

var (
	gitBrokenRe   = regexp.MustCompile(`git: '([^']*)' is not a git command`)
	gitUpstreamRe = regexp.MustCompile(`git push --set-upstream (\S+) (\S+)`)
	gitPathspecRe = regexp.MustCompile(`error: pathspec '([^']*)' did not match any file\(s\) known to git`)
)

func gitNotCommandRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "git_not_command",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return outputContains(cmd, " is not a git command. See 'git --help'.") &&
				outputContains(cmd, "The most similar command", "Did you mean")
		}, "git"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			m := gitBrokenRe.FindStringSubmatch(cmd.Output())
			if m == nil {
				return nil, nil
			}
			suggested := suggestionsAfter(cmd.Output(),
				"The most similar command is",
				"The most similar commands are",
				"Did you mean")
			return replaceCommand(cmd.Script(), m[1], suggested, env.NumCloseMatches), nil
		},
	}
}

// gitPushRule applies the upstream git suggests for a branch without one.
// Positional arguments and upstream flags of the original push are dropped;
// other flags are kept.
func gitPushRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "git_push",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return pushIndex(cmd.Parts()) > 0 && gitUpstreamRe.MatchString(cmd.Output())
		}, "git"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			all := gitUpstreamRe.FindAllStringSubmatch(cmd.Output(), -1)
			if len(all) == 0 {
				return nil, nil
			}
			last := all[len(all)-1]
			parts := cmd.Parts()
			idx := pushIndex(parts)

			var b strings.Builder
			b.WriteString(shell.Quote(parts[0]))
			b.WriteString(quoteArgs(parts[1:idx]))
			b.WriteString(" push")
			var flags []string
			for _, p := range parts[idx+1:] {
				if p == "-u" || p == "--set-upstream" || !strings.HasPrefix(p, "-") {
					continue
				}
				flags = append(flags, p)
			}
			b.WriteString(quoteArgs(flags))
			b.WriteString(" --set-upstream " + last[1] + " " + last[2])
			return single(b.String())
		},
	}
}

func pushIndex(parts []string) int {
	for i, p := range parts {
		if p == "push" {
			return i
		}
	}
	return -1
}

func gitAddRule(env Env) corrector.Rule {
	return &corrector.Definition{
		RuleName: "git_add",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return outputContains(cmd, "did not match any file(s) known to git") &&
				outputContains(cmd, "Did you forget to 'git add'?")
		}, "git"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			m := gitPathspecRe.FindStringSubmatch(cmd.Output())
			if m == nil {
				return nil, nil
			}
			return single(env.Shell.And("git add -- "+shell.Quote(m[1]), cmd.Script()))
		},
	}
}
