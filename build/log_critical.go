package build

import (
	"github.com/btcsuite/btclog"
)

// CriticalLogger is a btclog.Logger that invokes a callback after every
// critical log line. The daemon uses it to stop on unrecoverable errors.
type CriticalLogger struct {
	btclog.Logger

	onCritical func()
}

// NewCriticalLogger wraps logger so onCritical runs after each Critical and
// Criticalf call.
func NewCriticalLogger(logger btclog.Logger,
	onCritical func()) *CriticalLogger {

	return &CriticalLogger{
		Logger:     logger,
		onCritical: onCritical,
	}
}

// Criticalf logs at LevelCritical and then runs the callback.
func (c *CriticalLogger) Criticalf(format string, params ...interface{}) {
	c.Logger.Criticalf(format, params...)
	c.fire()
}

// Critical logs at LevelCritical and then runs the callback.
func (c *CriticalLogger) Critical(v ...interface{}) {
	c.Logger.Critical(v...)
	c.fire()
}

func (c *CriticalLogger) fire() {
	if c.onCritical == nil {
		return
	}

	c.Logger.Info("Critical error, requesting shutdown")
	c.onCritical()
}
