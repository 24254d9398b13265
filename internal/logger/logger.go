// Package logger writes leveled, line-oriented logs to stderr.
//
// Debug, Info and Section trace the ingestion and answering pipelines and
// only appear with --verbose. Warn and Error are always written: they
// report skipped files and degraded answers.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log line.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var prefixes = [...]string{
	LevelDebug: "[DEBUG] ",
	LevelInfo:  "[INFO] ",
	LevelWarn:  "[WARN] ",
	LevelError: "[ERROR] ",
}

// String returns the prefix without brackets.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose turns Debug, Info and Section output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

// SetOutput redirects all log lines. The default is os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	mu.Unlock()
}

// Enabled reports whether a line at level would be written.
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled(level)
}

func enabled(level Level) bool {
	return level >= LevelWarn || verbose
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section writes a "=== name ===" header and returns a func that logs the
// section's elapsed time at debug level. Callers usually defer it.
func Section(name string) (done func()) {
	start := now()

	mu.Lock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
	mu.Unlock()

	return func() {
		logf(LevelDebug, "%s took %s", name, now().Sub(start).Round(time.Millisecond))
	}
}

// logf holds the lock for the write so concurrent lines never interleave.
func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(level) {
		return
	}
	fmt.Fprintf(output, prefixes[level]+format+"\n", args...)
}
