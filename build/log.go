package build

import (
	"io"
	"sort"

	"github.com/btcsuite/btclog"
)

// LogType is the output mode selected with the stdlog and nolog build tags.
type LogType byte

const (
	// LogTypeNone drops every log line.
	LogTypeNone LogType = iota

	// LogTypeStdOut writes log lines to stdout only.
	LogTypeStdOut

	// LogTypeDefault writes log lines to stdout and to the log file.
	LogTypeDefault
)

// String returns the name printed in the daemon's startup banner.
func (t LogType) String() string {
	switch t {
	case LogTypeNone:
		return "none"

	case LogTypeStdOut:
		return "stdout"

	case LogTypeDefault:
		return "default"

	default:
		return "unknown"
	}
}

// LogWriter is the io.Writer behind the daemon's log backend. Its Write
// method depends on the LoggingType the binary was built with.
type LogWriter struct {
	// File receives a copy of every line in default builds. It stays nil
	// while the log file is disabled.
	File io.Writer
}

// NewSubLogger returns the logger of subsystem. Production builds and
// development daemons take it from genSubLogger, development builds with the
// stdlog tag get a standalone stdout logger at LogLevel, every other
// combination is silenced.
func NewSubLogger(subsystem string,
	genSubLogger func(string) btclog.Logger) btclog.Logger {

	switch {
	case Deployment == Production && genSubLogger != nil:
		return genSubLogger(subsystem)

	case Deployment == Development && LoggingType == LogTypeDefault &&
		genSubLogger != nil:

		return genSubLogger(subsystem)

	case Deployment == Development && LoggingType == LogTypeStdOut:
		logger := btclog.NewBackend(&LogWriter{}).Logger(subsystem)

		level, _ := btclog.LevelFromString(LogLevel)
		logger.SetLevel(level)

		return logger
	}

	return btclog.Disabled
}

// SubLoggers maps subsystem codes to their loggers.
type SubLoggers map[string]btclog.Logger

// LeveledSubLogger exposes a set of subsystem loggers whose levels can be
// changed at runtime.
type LeveledSubLogger interface {
	// SubLoggers returns every registered subsystem logger.
	SubLoggers() SubLoggers

	// SupportedSubsystems returns the sorted subsystem codes.
	SupportedSubsystems() []string

	// SetLogLevel changes the level of a single subsystem.
	SetLogLevel(subsystemID string, logLevel string)

	// SetLogLevels changes the level of every subsystem.
	SetLogLevels(logLevel string)
}

// SubLoggerManager hands out subsystem loggers that share one backend.
type SubLoggerManager struct {
	backend    *btclog.Backend
	subLoggers SubLoggers
}

var _ LeveledSubLogger = (*SubLoggerManager)(nil)

// NewSubLoggerManager creates a manager whose loggers write to w.
func NewSubLoggerManager(w io.Writer) *SubLoggerManager {
	return &SubLoggerManager{
		backend:    btclog.NewBackend(w),
		subLoggers: make(SubLoggers),
	}
}

// GenSubLogger creates and registers the logger of subsystem. It matches the
// genSubLogger argument of NewSubLogger.
func (m *SubLoggerManager) GenSubLogger(subsystem string) btclog.Logger {
	logger := m.backend.Logger(subsystem)
	m.subLoggers[subsystem] = logger

	return logger
}

// SubLoggers returns every registered subsystem logger.
func (m *SubLoggerManager) SubLoggers() SubLoggers {
	return m.subLoggers
}

// SupportedSubsystems returns the sorted codes of the registered subsystems.
func (m *SubLoggerManager) SupportedSubsystems() []string {
	subsystems := make([]string, 0, len(m.subLoggers))
	for subsystem := range m.subLoggers {
		subsystems = append(subsystems, subsystem)
	}
	sort.Strings(subsystems)

	return subsystems
}

// SetLogLevel changes the level of subsystemID. Unknown subsystems are
// ignored and unknown levels fall back to info.
func (m *SubLoggerManager) SetLogLevel(subsystemID string, logLevel string) {
	logger, ok := m.subLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// SetLogLevels changes the level of every registered subsystem.
func (m *SubLoggerManager) SetLogLevels(logLevel string) {
	for subsystemID := range m.subLoggers {
		m.SetLogLevel(subsystemID, logLevel)
	}
}
