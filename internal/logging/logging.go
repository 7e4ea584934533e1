// Package logging sets up slog for the decoders and command line, and zerolog
// for the catalog and metrics managers.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, command string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("osutool.%s.%s.log", command, sessionStart.Format("20060102_150405")),
	)
}

// OpenLogFile creates the log directory if needed and opens path for
// appending.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
