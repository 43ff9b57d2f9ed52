package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreProcessLogger(t *testing.T) {
	t.Helper()
	prev := processLogger.Load()
	t.Cleanup(func() { processLogger.Store(prev) })
}

func TestDefaultLoggerReturnsInstalledLogger(t *testing.T) {
	restoreProcessLogger(t)

	var buf bytes.Buffer
	installed := newBufferLogger(&buf, LevelInfo)
	SetDefaultLogger(installed)

	assert.Same(t, installed, DefaultLogger())
	DefaultLogger().Info("through the process logger")
	assert.Contains(t, buf.String(), "through the process logger")
}

func TestDefaultLoggerFallsBack(t *testing.T) {
	restoreProcessLogger(t)
	processLogger.Store(nil)

	first := DefaultLogger()
	require.NotNil(t, first)
	assert.Same(t, first, DefaultLogger(), "the fallback is installed once")
}
