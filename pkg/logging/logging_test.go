package logging

import (
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogBackendDefaults(t *testing.T) {
	b, err := NewLogBackend(LogConfig{})
	require.NoError(t, err)
	defer b.Close()

	log := b.Logger("TEST")
	assert.Equal(t, slog.LevelInfo, log.Level())
}

func TestDebugLevelOverrides(t *testing.T) {
	b, err := NewLogBackend(LogConfig{DebugLevel: "warn,TRAN=trace"})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, slog.LevelWarn, b.Logger("RECO").Level())
	assert.Equal(t, slog.LevelTrace, b.Logger("TRAN").Level())
	assert.Equal(t, slog.LevelTrace, b.Logger("tran").Level())
}

func TestDebugLevelRejectsUnknown(t *testing.T) {
	_, err := NewLogBackend(LogConfig{DebugLevel: "loud"})
	assert.Error(t, err)

	_, err = NewLogBackend(LogConfig{DebugLevel: "TRAN=loud"})
	assert.Error(t, err)
}

func TestLoggerIsCached(t *testing.T) {
	b, err := NewLogBackend(LogConfig{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, b.Logger("TRAN"), b.Logger("TRAN"))
}

func TestLogFileCreated(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLogBackend(LogConfig{
		LogFile:     filepath.Join(dir, "logs", "tablecli.log"),
		MaxLogFiles: 2,
	})
	require.NoError(t, err)

	b.Logger("TEST").Infof("hello")
	require.NoError(t, b.Close())
	assert.FileExists(t, filepath.Join(dir, "logs", "tablecli.log"))
}
