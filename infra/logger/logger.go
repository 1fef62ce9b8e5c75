package logger

import corelogger "github.com/kilianp07/logisim/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. Output format and level are
// taken from the LOGISIM_ENV and LOGISIM_LOG_LEVEL variables.
func New(component string) Logger {
	return NewZerologLogger(component)
}
