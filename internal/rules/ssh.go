package rules

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/animeshkundu/oops/internal/corrector"
)

var (
	sshChangedPatterns = []string{
		"WARNING: REMOTE HOST IDENTIFICATION HAS CHANGED!",
		"WARNING: POSSIBLE DNS SPOOFING DETECTED!",
	}
	sshOffendingRe = regexp.MustCompile(`(?:Offending (?:key for IP|\S+ key)|Matching host key) in ([^:\r\n]+):(\d+)`)
)

// sshKnownHostsRule reruns ssh after dropping the stale known_hosts entries
// the error points at.
func sshKnownHostsRule() corrector.Rule {
	return &corrector.Definition{
		RuleName: "ssh_known_hosts",
		MatchFunc: forApp(func(cmd corrector.Command) bool {
			return outputContains(cmd, sshChangedPatterns...) && sshOffendingRe.MatchString(cmd.Output())
		}, "ssh", "scp"),
		NewCommandFunc: func(cmd corrector.Command) ([]string, error) {
			return single(cmd.Script())
		},
		SideEffectFunc: removeOffendingKeys,
	}
}

func removeOffendingKeys(ctx context.Context, cmd corrector.Command, _ string) error {
	lines := map[string][]int{}
	for _, m := range sshOffendingRe.FindAllStringSubmatch(cmd.Output(), -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil || n <= 0 {
			continue
		}
		lines[m[1]] = append(lines[m[1]], n)
	}
	files := make([]string, 0, len(lines))
	for f := range lines {
		files = append(files, f)
	}
	slices.Sort(files)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := dropLines(f, lines[f]); err != nil {
			return err
		}
	}
	return nil
}

// dropLines removes the given 1-based lines from path, keeping its mode.
func dropLines(path string, numbers []int) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	drop := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		drop[n] = true
	}
	var out bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if drop[n] {
			continue
		}
		out.Write(sc.Bytes())
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	if err := os.WriteFile(path, out.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	return nil
}
