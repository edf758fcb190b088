//go:build stdlog
// +build stdlog

package build

import "os"

// LoggingType selects stdout only, the log file is never written.
const LoggingType = LogTypeStdOut

// Write copies b to stdout.
func (w *LogWriter) Write(b []byte) (int, error) {
	_, _ = os.Stdout.Write(b)

	return len(b), nil
}
