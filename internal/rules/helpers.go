package rules

import (
	"path/filepath"
	"strings"

	"github.com/animeshkundu/oops/internal/corrector"
	"github.com/animeshkundu/oops/internal/fuzzy"
	"github.com/animeshkundu/oops/internal/shell"
)

// isApp reports whether the command's program is one of names. A leading
// directory is ignored so "/usr/bin/git" counts as git.
func isApp(cmd corrector.Command, names ...string) bool {
	parts := cmd.Parts()
	if len(parts) == 0 {
		return false
	}
	prog := filepath.Base(parts[0])
	for _, n := range names {
		if prog == n {
			return true
		}
	}
	return false
}

// forApp wraps match so it only runs for the given programs.
func forApp(match func(corrector.Command) bool, names ...string) func(corrector.Command) bool {
	return func(cmd corrector.Command) bool {
		return isApp(cmd, names...) && match(cmd)
	}
}

func single(script string) ([]string, error) {
	return []string{script}, nil
}

func outputContains(cmd corrector.Command, needles ...string) bool {
	out := cmd.Output()
	for _, n := range needles {
		if strings.Contains(out, n) {
			return true
		}
	}
	return false
}

func lowerOutputContains(cmd corrector.Command, needles ...string) bool {
	out := strings.ToLower(cmd.Output())
	for _, n := range needles {
		if strings.Contains(out, n) {
			return true
		}
	}
	return false
}

// replaceArgument swaps the first standalone occurrence of from for to,
// preferring a trailing argument so "git push origin push" keeps its branch.
func replaceArgument(script, from, to string) string {
	if strings.HasSuffix(script, " "+from) {
		return strings.TrimSuffix(script, from) + to
	}
	return strings.Replace(script, " "+from+" ", " "+to+" ", 1)
}

// replaceCommand proposes script variants with broken replaced by the
// closest of matched.
func replaceCommand(script, broken string, matched []string, n int) []string {
	closest := fuzzy.CloseMatches(broken, matched, n, fuzzy.DefaultCutoff)
	out := make([]string, 0, len(closest))
	for _, m := range closest {
		out = append(out, replaceArgument(script, broken, m))
	}
	return out
}

// suggestionsAfter collects the indented lines that follow the first line
// containing one of the headers, as git and friends print "did you mean"
// lists.
func suggestionsAfter(output string, headers ...string) []string {
	var out []string
	collecting := false
	for _, line := range strings.Split(output, "\n") {
		if collecting {
			if !strings.HasPrefix(line, "\t") && !strings.HasPrefix(line, "  ") {
				if len(out) > 0 {
					break
				}
				continue
			}
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
			continue
		}
		for _, h := range headers {
			if strings.Contains(line, h) {
				collecting = true
				break
			}
		}
	}
	return out
}

// quoteArgs re-joins parsed arguments with a leading space, quoting as needed.
func quoteArgs(args []string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(shell.Quote(a))
	}
	return b.String()
}
