package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("bogus"))
}

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	l := New(&Config{Level: "info", Format: "json", Output: "file", FilePath: path, MaxSize: 1})

	l.Info("copied", zap.String("path", "/raw/a.jpg"))
	l.Debug("hidden")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"path":"/raw/a.jpg"`))
	assert.False(t, strings.Contains(string(data), "hidden"))
}

func TestOrFallsBackToGlobal(t *testing.T) {
	custom := zap.NewNop()
	assert.Same(t, custom, Or(custom))
	assert.NotNil(t, Or(nil))
}

func TestNewFallsBackToStdout(t *testing.T) {
	for _, cfg := range []*Config{
		{Level: "info", Output: "stderr"},
		{Level: "info", Output: "file"},
	} {
		l := New(cfg)
		assert.True(t, l.Core().Enabled(zapcore.ErrorLevel), cfg.Output)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel), cfg.Output)
	}
}

func TestNewFileOutputIsNotColored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l := New(&Config{Level: "info", Format: "console", Output: "both", FilePath: path, MaxSize: 1})

	l.Warn("skipped", zap.String("label", "unknown"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "warn")
	assert.NotContains(t, string(data), "\x1b[")
}
