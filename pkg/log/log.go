// Package log provides the structured, leveled logger every process in
// this repo shares: the arbiter, the viewer, and every player binary
// all write to the same JSON-lines format, distinguished by a
// component tag, since several of them commonly end up sharing one
// terminal or one redirected log file at once.
package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
)

var (
	defaultLogger *Logger
	once          sync.Once
)

func init() {
	once.Do(func() {
		defaultLogger = New(os.Stdout, "", log.Ldate|log.Ltime, LogLevelDebug)
	})
}

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

func (level LogLevel) String() string {
	switch level {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	case LogLevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a log level string into a LogLevel.
// Valid log levels are: error, warn, info, debug, trace.
func ParseLogLevel(level string) (LogLevel, error) {
	switch level {
	case "error":
		return LogLevelError, nil
	case "warn":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	case "trace":
		return LogLevelTrace, nil
	default:
		return LogLevelError, fmt.Errorf("unknown log level: %s", level)
	}
}

func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
	defaultLogger.Info("log level set to %s", level)
}

// SetComponent tags every subsequent line the default logger emits with
// which process wrote it.
func SetComponent(name string) {
	defaultLogger.SetComponent(name)
}

// SetOutput redirects the default logger. A player process's stdout is
// the pipe the Arbiter reads its move bytes from, so it must call this
// with os.Stderr before logging anything, or its own log lines would
// land in the middle of that byte stream.
func SetOutput(out *os.File) {
	defaultLogger.logger.SetOutput(out)
}

type Logger struct {
	logger    *log.Logger
	level     LogLevel
	component string
}

func New(out *os.File, prefix string, flag int, level LogLevel) *Logger {
	return &Logger{
		logger: log.New(out, prefix, flag),
		level:  level,
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// SetComponent tags every subsequent line this logger emits with name,
// e.g. "arbiter", "viewer", or "player:2".
func (l *Logger) SetComponent(name string) {
	l.component = name
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	logEntry := map[string]interface{}{
		"level": level.String(),
		"msg":   fmt.Sprintf(format, args...),
	}
	if l.component != "" {
		logEntry["component"] = l.component
	}
	if ierr, ok := findIPCError(args); ok {
		// Kind and Op ride along as their own structured fields instead
		// of being buried inside the formatted message string, so a log
		// pipeline can filter or count by failure kind without parsing
		// msg.
		logEntry["kind"] = ierr.Kind.String()
		logEntry["op"] = ierr.Op
	}
	msgBytes, _ := json.Marshal(logEntry)
	l.logger.Print(string(msgBytes))
}

// findIPCError looks for an *ipcerr.Error among a log call's arguments,
// unwrapping ordinary errors along the way.
func findIPCError(args []interface{}) (*ipcerr.Error, bool) {
	for _, a := range args {
		err, ok := a.(error)
		if !ok {
			continue
		}
		var ierr *ipcerr.Error
		if errors.As(err, &ierr) {
			return ierr, true
		}
	}
	return nil, false
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, format, args...)
}

func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, format, args...)
}

func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

func Trace(format string, args ...interface{}) {
	defaultLogger.Trace(format, args...)
}
