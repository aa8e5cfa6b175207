// Package log holds the logger shared by all vulncert packages, plus package-level
// helpers that forward to it.
package log

import "github.com/vulncert/vulncert/vulncert/logger"

// Log is the logger everything writes through. It starts as a no-op and is swapped
// for a real implementation at startup once configuration is known.
var Log logger.Logger = nopLogger{}

// Errorf logs the formatted message at the error level.
func Errorf(format string, args ...interface{}) {
	Log.Errorf(format, args...)
}

// Error logs the arguments at the error level.
func Error(args ...interface{}) {
	Log.Error(args...)
}

// Warnf logs the formatted message at the warning level.
func Warnf(format string, args ...interface{}) {
	Log.Warnf(format, args...)
}

// Warn logs the arguments at the warning level.
func Warn(args ...interface{}) {
	Log.Warn(args...)
}

// Infof logs the formatted message at the info level.
func Infof(format string, args ...interface{}) {
	Log.Infof(format, args...)
}

// Info logs the arguments at the info level.
func Info(args ...interface{}) {
	Log.Info(args...)
}

// Debugf logs the formatted message at the debug level.
func Debugf(format string, args ...interface{}) {
	Log.Debugf(format, args...)
}

// Debug logs the arguments at the debug level.
func Debug(args ...interface{}) {
	Log.Debug(args...)
}
