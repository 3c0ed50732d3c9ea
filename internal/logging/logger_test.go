package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf, NoColors: true})

	logger.Debug("rule failed", zap.String("rule", "sudo"))
	logger.Info("cycle started")
	logger.Warn("slow rule abandoned", zap.String("rule", "no_command"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "rule failed")
	assert.NotContains(t, out, "cycle started")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "slow rule abandoned")
	assert.Contains(t, out, `"rule": "no_command"`)
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf, Debug: true, NoColors: true})

	logger.Debug("rule failed", zap.String("rule", "sudo"))
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "oops")
	assert.Contains(t, buf.String(), "rule failed")
}
