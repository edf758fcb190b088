//go:build !stdlog && !nolog
// +build !stdlog,!nolog

package build

import "os"

// LoggingType selects stdout plus the optional log file.
const LoggingType = LogTypeDefault

// Write copies b to stdout and, once opened, to the log file. Errors are
// dropped so logging never fails the caller.
func (w *LogWriter) Write(b []byte) (int, error) {
	_, _ = os.Stdout.Write(b)
	if w.File != nil {
		_, _ = w.File.Write(b)
	}

	return len(b), nil
}
