// Package logger builds the logrus logger shared by the command line tools.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"solarspots/internal/apperr"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to out at the given level and format.
// Unknown levels fall back to info; a nil out writes to stderr.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(ParseLevel(level))

	switch strings.ToLower(format) {
	case FormatJSON:
		// Set JSON formatter for structured logging
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	case FormatText, "":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	default:
		return nil, apperr.Newf(apperr.KindConfig, "unknown log format %q", format)
	}
	return l, nil
}

// ParseLevel maps a level name to a logrus level, defaulting to info
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithError creates an entry carrying err and, for application errors,
// its kind and path.
func WithError(log logrus.FieldLogger, err error) *logrus.Entry {
	entry := log.WithError(err)
	if kind := apperr.KindOf(err); kind != "" {
		entry = entry.WithField("kind", string(kind))
	}
	if path := apperr.PathOf(err); path != "" {
		entry = entry.WithField("path", path)
	}
	return entry
}
