package logger

import corelogger "github.com/kilianp07/wasteflow/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. Output format and level
// come from APP_ENV and LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
