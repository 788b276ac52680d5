// Package log implements a small leveled logger shared by the attacks and the
// challenge runner.  The default level is Warn, so library users only hear
// about anomalies unless they ask for more.
package log // import "github.com/ciz/cryptopals/internal/log"

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level is a logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a
// Level.  Matching is case insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelWarn, fmt.Errorf("log: unknown level %q", s)
}

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	level.Set(l.slogLevel())
}

// SetOutput redirects log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// Enabled reports whether messages at l are currently written.
func Enabled(l Level) bool {
	return current().Enabled(context.Background(), l.slogLevel())
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func logf(l Level, format string, args ...interface{}) {
	lg := current()
	if !lg.Enabled(context.Background(), l.slogLevel()) {
		return
	}
	lg.Log(context.Background(), l.slogLevel(), fmt.Sprintf(format, args...))
}

// Debugf logs at LevelDebug.
func Debugf(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Infof logs at LevelInfo.
func Infof(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warnf logs at LevelWarn.
func Warnf(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Errorf logs at LevelError.
func Errorf(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}
