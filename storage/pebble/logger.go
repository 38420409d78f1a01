package pebble

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cockroachdb/pebble"
)

// Ensure that Logger implements the pebble.LoggerAndTracer interface.
var _ pebble.LoggerAndTracer = (*Logger)(nil)

// Logger routes Pebble's internal log messages to a [slog.Logger]. Pebble's
// informational messages are logged at debug level, since they are mostly
// flush and compaction chatter. Tracing is disabled.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Pebble logger that writes to logger, or to
// [slog.Default] when logger is nil.
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger.With("component", "pebble")}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// Fatalf logs the message and exits the process, as Pebble expects it not to
// return.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (l *Logger) Eventf(ctx context.Context, format string, args ...interface{}) {}

func (l *Logger) IsTracingEnabled(ctx context.Context) bool {
	return false
}
