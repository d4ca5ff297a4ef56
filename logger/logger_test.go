package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/beka-birhanu/vinom-search/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("rejects missing name or writer", func(t *testing.T) {
		_, err := New("", config.ColorCyan, &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrEmptyName)

		_, err = New("APP", config.ColorCyan, nil)
		assert.ErrorIs(t, err, ErrNoWriter)
	})

	t.Run("tags lines with the component name", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("APP", config.ColorGreen, &buf)
		require.NoError(t, err)

		l.WithFields(logrus.Fields{"b": 2, "a": 1}).Info("ready")

		line := buf.String()
		assert.Contains(t, line, config.ColorGreen+"[APP]"+config.ColorReset)
		assert.Contains(t, line, "[INFO]")
		assert.True(t, strings.HasSuffix(line, "ready a=1 b=2\n"), line)
	})

	t.Run("debug is hidden by default", func(t *testing.T) {
		var buf bytes.Buffer
		l, err := New("APP", config.ColorGreen, &buf)
		require.NoError(t, err)

		l.Debug("noise")
		assert.Empty(t, buf.String())
	})
}

func TestNewWithLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithLevel("SEARCH", "", "debug", &buf)
	require.NoError(t, err)

	l.Debug("step")
	assert.Contains(t, buf.String(), "[SEARCH] [DEBUG] step")

	_, err = NewWithLevel("SEARCH", "", "loud", &buf)
	assert.Error(t, err)
}

func TestFormatterWithoutColors(t *testing.T) {
	f := &Formatter{Name: "REPO", Color: config.ColorBlue, DisableColors: true}
	out, err := f.Format(&logrus.Entry{Level: logrus.ErrorLevel, Message: "save failed", Data: logrus.Fields{}})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\033[")
	assert.Contains(t, string(out), "[REPO] [ERROR] save failed")
}
