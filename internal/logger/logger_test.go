package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarspots/internal/apperr"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatJSON, &buf)
	require.NoError(t, err)

	log.WithField("radius", 80.5).Debug("limb fitted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "limb fitted", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, 80.5, entry["radius"])
}

func TestNewTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", FormatText, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("info", "xml", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindConfig))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"trace":   logrus.TraceLevel,
		"DEBUG":   logrus.DebugLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for name, want := range cases {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestWithErrorAddsKindAndPath(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FormatJSON, &buf)
	require.NoError(t, err)

	WithError(log, apperr.NewLoadError("/data/sun.fits", "no image HDU", nil)).Error("analysis failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "load", entry["kind"])
	assert.Equal(t, "/data/sun.fits", entry["path"])
	assert.Contains(t, entry["error"], "no image HDU")
}
