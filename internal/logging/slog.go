package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// stdout is where the console handler writes when no log file is given.
var stdout io.Writer = os.Stdout

// SlogManager manages slog-based logging with an optional Graylog sink.
type SlogManager struct {
	logger *slog.Logger
	sink   io.Writer
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewGraylogWriter opens a GELF UDP writer for the given host:port.
func NewGraylogWriter(address string) (io.WriteCloser, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, err
	}
	w.Facility = "osu-parsers"
	return w, nil
}

// Setup initializes the logging system. Records go to file when one is
// given and to stdout otherwise. A non-nil sink receives every record as JSON,
// which is what the GELF writer expects as a message body.
func (m *SlogManager) Setup(file io.Writer, level string, sink io.Writer) {
	lvl := parseLevel(level)
	m.sink = sink

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(stdout, handlerOpts))
	}
	if sink != nil {
		handlers = append(handlers, slog.NewJSONHandler(sink, handlerOpts))
	}

	m.logger = slog.New(NewContextHandler(NewMultiHandler(handlers...)))
	m.logger.Info("Logging initialized", "level", level, "graylog", sink != nil)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Close closes the Graylog sink if it has one.
func (m *SlogManager) Close() error {
	if c, ok := m.sink.(io.Closer); ok {
		m.sink = nil
		return c.Close()
	}
	return nil
}
