package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animeshkundu/oops/internal/selector"
)

const gitTypoOutput = "git: 'psuh' is not a git command. See 'git --help'.\n\nThe most similar command is\n\tpush\n"

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("OOPS_HOME", home)
	t.Setenv("OOPS_CONFIG", "")
	t.Setenv("SHELL", "/bin/bash")
	for _, key := range []string{
		"OOPS_RULES", "OOPS_EXCLUDE_RULES", "OOPS_PRIORITY", "OOPS_REQUIRE_CONFIRMATION",
		"OOPS_REPEAT", "OOPS_DEBUG", "OOPS_SHELL", "OOPS_ALIAS", "OOPS_HISTORY", "OOPS_RERUN",
	} {
		t.Setenv(key, "")
	}
	return home
}

func execute(t *testing.T, opts *rootOptions, stdin string, args ...string) (string, string, error) {
	t.Helper()
	if opts == nil {
		opts = &rootOptions{}
	}
	cmd := newRootCmd(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestFixPrintsBestCorrection(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, nil, gitTypoOutput, "fix", "--yes", "--stdin-output", "--", "git", "psuh")
	require.NoError(t, err)
	assert.Equal(t, "git push\n", stdout)
}

func TestFixRepeatWrapsResult(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, nil, gitTypoOutput, "fix", "-y", "--repeat", "--stdin-output", "--", "git psuh")
	require.NoError(t, err)
	assert.Equal(t, "git push || oops fix --repeat\n", stdout)

	t.Setenv("OOPS_ALIAS", "fuck")
	stdout, _, err = execute(t, nil, gitTypoOutput, "fix", "-y", "--repeat", "--stdin-output", "--", "git psuh")
	require.NoError(t, err)
	assert.Equal(t, "git push || fuck --repeat\n", stdout)
}

func TestFixTakesScriptFromHistory(t *testing.T) {
	isolate(t)
	t.Setenv("OOPS_ALIAS", "oops")
	t.Setenv("OOPS_HISTORY", "cd /tmp\ngit psuh\noops\n")
	stdout, _, err := execute(t, nil, gitTypoOutput, "fix", "--yes", "--stdin-output")
	require.NoError(t, err)
	assert.Equal(t, "git push\n", stdout)
}

func TestFixNoCorrection(t *testing.T) {
	isolate(t)
	stdout, stderr, err := execute(t, nil, "total 0", "fix", "--yes", "--stdin-output", "--", "ls")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no correction found")

	stdout, stderr, err = execute(t, nil, "", "fix", "--yes", "--stdin-output")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "nothing to fix")
}

func TestFixPromptCancelPrintsNothing(t *testing.T) {
	isolate(t)
	opts := &rootOptions{prompter: selector.PrompterFunc(func(_ context.Context, m *selector.Machine) error {
		return m.Cancel()
	})}
	stdout, stderr, err := execute(t, opts, gitTypoOutput, "fix", "--stdin-output", "--", "git psuh")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "aborted")
}

func TestFixPromptConfirm(t *testing.T) {
	isolate(t)
	var seen []string
	opts := &rootOptions{prompter: selector.PrompterFunc(func(_ context.Context, m *selector.Machine) error {
		for _, c := range m.Candidates() {
			seen = append(seen, c.Script)
		}
		return m.Confirm()
	})}
	stdout, _, err := execute(t, opts, gitTypoOutput, "fix", "--stdin-output", "--", "git psuh")
	require.NoError(t, err)
	assert.Equal(t, "git push\n", stdout)
	assert.Equal(t, []string{"git push"}, seen)
}

func TestFixRejectsInvalidRuleSet(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, nil, gitTypoOutput, "fix", "--yes", "--stdin-output", "--exclude-rules", "ALL", "--", "git psuh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestFixValidatesRulesBeforeRerun(t *testing.T) {
	isolate(t)
	marker := filepath.Join(t.TempDir(), "ran")
	_, _, err := execute(t, nil, "", "--exclude-rules", "ALL", "fix", "--yes", "--", "touch "+marker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "command must not run when the rule set is invalid")
}

func TestDoctorReportsRuleSetErrors(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, nil, "", "--exclude-rules", "ALL", "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rules_total=18")
	assert.Contains(t, stdout, "rules_error=configuration error")
}

func TestFixHonoursExcludedRules(t *testing.T) {
	isolate(t)
	stdout, stderr, err := execute(t, nil, gitTypoOutput, "--exclude-rules", "git_not_command", "fix", "--yes", "--stdin-output", "--", "git psuh")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no correction found")
}

func TestRulesListsCatalog(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, nil, "", "rules", "--exclude-rules", "sudo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 19)
	assert.Equal(t, []string{"NAME", "ENABLED", "PRIORITY", "OUTPUT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"sudo", "false", "1000", "required"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"cd_parent", "true", "1000", "optional"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"no_command", "true", "3000", "required"}, strings.Fields(lines[18]))
}

func TestAliasPrintsFunction(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, nil, "", "alias", "--shell", "zsh", "--name", "fuck")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "fuck () {\n"))
	assert.Contains(t, stdout, "print -s")
	assert.Contains(t, stdout, "command oops fix")

	_, _, err = execute(t, nil, "", "alias", "--shell", "tcsh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell")
}

func TestDoctorWritesDefault(t *testing.T) {
	home := isolate(t)
	stdout, _, err := execute(t, nil, "", "doctor", "--write-default")
	require.NoError(t, err)
	path := filepath.Join(home, "config.yaml")
	assert.Contains(t, stdout, "config_path="+path)
	assert.Contains(t, stdout, "config_present=false")
	assert.Contains(t, stdout, "config_written="+path)
	assert.Contains(t, stdout, "rules_total=18")
	assert.Contains(t, stdout, "shell=bash")
	_, err = os.Stat(path)
	require.NoError(t, err)

	stdout, _, err = execute(t, nil, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "config_present=true")
}

func TestDoctorReportsConfigErrors(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("rules: [oops\n"), 0o600))
	stdout, _, err := execute(t, nil, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "config_error=")
}
