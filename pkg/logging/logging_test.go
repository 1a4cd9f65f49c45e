package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "logs", "stowaway.log")
			t.Setenv(EnvLogFile, logPath)

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			assert.FileExists(t, logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Run("override wins", func(t *testing.T) {
		t.Setenv(EnvLogFile, "/custom/place/run.log")
		assert.Equal(t, "/custom/place/run.log", getLogFilePath())
	})

	t.Run("xdg state home", func(t *testing.T) {
		stateHome := t.TempDir()
		t.Setenv(EnvLogFile, "")
		t.Setenv("XDG_STATE_HOME", stateHome)
		xdg.Reload()
		t.Cleanup(xdg.Reload)

		assert.Equal(t, filepath.Join(stateHome, "stowaway", "stowaway.log"), getLogFilePath())
	})
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c.log")
	f, err := setupLogFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.FileExists(t, path)
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := log.Logger
	defer func() { log.Logger = original }()

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(&buf)

	logger := GetLogger("reconcile")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"reconcile"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "rescan")
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
	assert.Contains(t, buf.String(), `"operation":"rescan"`)
}
