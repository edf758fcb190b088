package build

import (
	"fmt"
	"strings"
)

// ParseAndSetDebugLevels applies a debuglevel option to logger. The option
// is either a single level for every subsystem, a comma separated list of
// SUBSYSTEM=level pairs, or a global level followed by such pairs.
func ParseAndSetDebugLevels(level string, logger LeveledSubLogger) error {
	entries := strings.Split(level, ",")

	if global := entries[0]; !strings.Contains(global, "=") {
		if !validLogLevel(global) {
			return fmt.Errorf("invalid debug level %q", global)
		}

		logger.SetLogLevels(global)
		entries = entries[1:]
	}

	for _, entry := range entries {
		subsystem, subLevel, err := parseLevelPair(entry)
		if err != nil {
			return err
		}

		if _, ok := logger.SubLoggers()[subsystem]; !ok {
			return fmt.Errorf("unknown subsystem %q, supported "+
				"subsystems are %v", subsystem,
				logger.SupportedSubsystems())
		}

		logger.SetLogLevel(subsystem, subLevel)
	}

	return nil
}

// parseLevelPair splits a SUBSYSTEM=level entry and validates the level.
func parseLevelPair(entry string) (string, string, error) {
	subsystem, level, ok := strings.Cut(entry, "=")
	if !ok || subsystem == "" || strings.Contains(level, "=") {
		return "", "", fmt.Errorf("malformed debug level entry %q, "+
			"expected SUBSYSTEM=level", entry)
	}

	if !validLogLevel(level) {
		return "", "", fmt.Errorf("invalid debug level %q for "+
			"subsystem %s", level, subsystem)
	}

	return subsystem, level, nil
}

// validLogLevel reports whether btclog knows logLevel.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical", "off":
		return true
	}

	return false
}
