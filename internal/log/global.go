package log

import "sync/atomic"

var processLogger atomic.Pointer[Logger]

// SetDefaultLogger installs the process logger. Commands install it once
// logging is configured; setup code that runs later logs through it.
func SetDefaultLogger(logger *Logger) {
	processLogger.Store(logger)
}

// DefaultLogger returns the process logger, or a Default logger when none
// was installed.
func DefaultLogger() *Logger {
	if l := processLogger.Load(); l != nil {
		return l
	}
	l := Default()
	if processLogger.CompareAndSwap(nil, l) {
		return l
	}
	return processLogger.Load()
}
