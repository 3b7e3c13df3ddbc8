// Package logger provides the small leveled logging interface used across
// regionbridge, with a stderr implementation and a silent one for tests.
package logger

import (
	"fmt"
	"log"
	"strings"
)

type LogLevel int

const (
	// LogDebug - DEBUG log level
	LogDebug LogLevel = iota

	// LogInfo - INFO log level
	LogInfo

	// LogError - ERROR log level (does not call os.Exit!)
	LogError
)

var logLevelPrefix = map[LogLevel]string{
	LogDebug: "DEBUG",
	LogInfo:  "INFO",
	LogError: "ERROR",
}

// ParseLevel maps "debug", "info" or "error" (any case) to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	for lvl, name := range logLevelPrefix {
		if strings.EqualFold(name, s) {
			return lvl, nil
		}
	}
	return LogInfo, fmt.Errorf("unknown log level %q", s)
}

type ILogger interface {
	Printf(level LogLevel, format string, a ...interface{})
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// StdErrLogger writes through the standard library logger, which defaults
// to stderr.
type StdErrLogger struct {
	logLevel LogLevel
}

// NewStdErrLogger creates a logger that drops messages below level.
func NewStdErrLogger(level LogLevel) *StdErrLogger {
	return &StdErrLogger{logLevel: level}
}

func (l *StdErrLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if l.logLevel > level {
		return
	}
	txt := logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...)
	log.Println(txt)
}
func (l *StdErrLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *StdErrLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *StdErrLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

// NullLogger - For mocking out in tests
type NullLogger struct {
}

func (l *NullLogger) Printf(level LogLevel, format string, a ...interface{}) {
	// We do nothing!
}
func (l *NullLogger) Debugf(format string, a ...interface{}) {
	// We do nothing!
}
func (l *NullLogger) Infof(format string, a ...interface{}) {
	// We do nothing!
}
func (l *NullLogger) Errorf(format string, a ...interface{}) {
	// We do nothing!
}
