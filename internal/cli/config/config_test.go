package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OOPS_RULES", "OOPS_EXCLUDE_RULES", "OOPS_PRIORITY", "OOPS_SLOW_COMMANDS",
		"OOPS_REQUIRE_CONFIRMATION", "OOPS_NO_COLORS", "OOPS_DEBUG", "OOPS_REPEAT",
		"OOPS_WAIT_COMMAND", "OOPS_WAIT_SLOW_COMMAND", "OOPS_RULE_TIMEOUT_MS",
		"OOPS_SIDE_EFFECT_TIMEOUT", "OOPS_NUM_CLOSE_MATCHES", "OOPS_MAX_WORKERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, []string{All}, s.Rules)
	assert.True(t, s.RequireConfirmation)
	assert.Equal(t, 250*time.Millisecond, s.RuleTimeout())
	assert.Equal(t, 30*time.Second, s.SideEffectTimeout())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules: [ALL, experimental]
exclude_rules: [sudo]
priority:
  no_command: 9999
require_confirmation: false
wait_command_seconds: 1
`), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL", "experimental"}, s.Rules)
	assert.Equal(t, []string{"sudo"}, s.ExcludeRules)
	assert.Equal(t, map[string]int{"no_command": 9999}, s.Priority)
	assert.False(t, s.RequireConfirmation)
	assert.Equal(t, 1, s.WaitCommandSeconds)
	assert.Equal(t, 15, s.WaitSlowCommandSeconds, "unset keys keep defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [sudo]\ndebug: false\n"), 0o600))
	t.Setenv("OOPS_RULES", "ALL:git_push")
	t.Setenv("OOPS_EXCLUDE_RULES", "sudo, no_command")
	t.Setenv("OOPS_PRIORITY", "git_push=10:sudo=-3")
	t.Setenv("OOPS_DEBUG", "yes")
	t.Setenv("OOPS_NUM_CLOSE_MATCHES", "5")
	t.Setenv("OOPS_MAX_WORKERS", "not-a-number")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL", "git_push"}, s.Rules)
	assert.Equal(t, []string{"sudo", "no_command"}, s.ExcludeRules)
	assert.Equal(t, map[string]int{"git_push": 10, "sudo": -3}, s.Priority)
	assert.True(t, s.Debug)
	assert.Equal(t, 5, s.NumCloseMatches)
	assert.Equal(t, 0, s.MaxWorkers, "malformed ints fall back")
}

func TestLoadRejectsBadPriority(t *testing.T) {
	clearEnv(t)
	t.Setenv("OOPS_PRIORITY", "git_push")
	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSetting)

	t.Setenv("OOPS_PRIORITY", "git_push=high")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidSetting)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unterminated\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s := Default()
	s.ExcludeRules = []string{"sudo"}
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWaitFor(t *testing.T) {
	s := Default()
	assert.Equal(t, 3*time.Second, s.WaitFor("git push"))
	assert.Equal(t, 15*time.Second, s.WaitFor("gradle build"))
	assert.Equal(t, 3*time.Second, s.WaitFor(""))
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("OOPS_HOME", "/tmp/oops-home")
	assert.Equal(t, "/tmp/oops-home/config.yaml", DefaultConfigPath())

	t.Setenv("OOPS_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/oops/config.yaml", DefaultConfigPath())
}

func TestWaitForClampsNonPositive(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wait_command_seconds: 0\nwait_slow_command_seconds: -4\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, s.WaitFor("git push"))
	assert.Equal(t, 15*time.Second, s.WaitFor("vagrant up"))
}
