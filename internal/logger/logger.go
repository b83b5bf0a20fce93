package logger

import (
	"io"
	"log"
	"os"
)

// Logger wraps the standard log.Logger with a verbose-gated debug level.
type Logger struct {
	*log.Logger
	verbose bool
}

// New creates a logger writing to stdout.
func New(verbose bool) *Logger {
	return &Logger{
		Logger:  log.New(os.Stdout, "", log.LstdFlags),
		verbose: verbose,
	}
}

// NewWriter creates a logger writing to w.
func NewWriter(w io.Writer, verbose bool) *Logger {
	return &Logger{
		Logger:  log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		verbose: verbose,
	}
}

// Debugf logs only when verbose mode is enabled.
func (l *Logger) Debugf(format string, v ...any) {
	if l.verbose {
		l.Printf(format, v...)
	}
}

// Verbose reports whether debug logging is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}
