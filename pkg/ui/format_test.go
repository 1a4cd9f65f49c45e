package ui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/arthur-debert/stowaway/pkg/errors"
	"github.com/arthur-debert/stowaway/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
	}{
		{"", ui.FormatAuto},
		{"auto", ui.FormatAuto},
		{"terminal", ui.FormatTerminal},
		{"term", ui.FormatTerminal},
		{"TERM", ui.FormatTerminal},
		{"text", ui.FormatText},
		{"plain", ui.FormatText},
		{"Json", ui.FormatJSON},
		{"yaml", ui.FormatYAML},
		{" yml ", ui.FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ui.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestParseFormatUnknown(t *testing.T) {
	_, err := ui.ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, "auto, text, terminal, json, yaml", errors.GetErrorDetails(err)["known"])
}

func TestEveryFormatParsesBack(t *testing.T) {
	for _, f := range ui.Formats() {
		parsed, err := ui.ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
}

func TestStructured(t *testing.T) {
	assert.True(t, ui.FormatJSON.Structured())
	assert.True(t, ui.FormatYAML.Structured())
	assert.False(t, ui.FormatText.Structured())
	assert.False(t, ui.FormatTerminal.Structured())
	assert.False(t, ui.FormatAuto.Structured())
}

func TestResolve(t *testing.T) {
	t.Run("explicit format is kept", func(t *testing.T) {
		assert.Equal(t, ui.FormatJSON, ui.FormatJSON.Resolve(&bytes.Buffer{}))
	})

	t.Run("in-memory writer gets text", func(t *testing.T) {
		assert.Equal(t, ui.FormatText, ui.FormatAuto.Resolve(&bytes.Buffer{}))
	})

	t.Run("NO_COLOR forces text", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, ui.FormatText, ui.FormatAuto.Resolve(os.Stdout))
	})

	t.Run("regular file gets text", func(t *testing.T) {
		f, err := os.Create(t.TempDir() + "/out")
		require.NoError(t, err)
		defer func() {
			_ = f.Close()
		}()
		assert.Equal(t, ui.FormatText, ui.FormatAuto.Resolve(f))
	})
}
