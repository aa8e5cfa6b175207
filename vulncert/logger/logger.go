package logger

// Logger is the interface used by the vulncert library for all logging. Consumers may provide
// their own implementation via vulncert.SetLogger, otherwise all messages are dropped.
type Logger interface {
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	Warnf(format string, args ...interface{})
	Warn(args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
	Debugf(format string, args ...interface{})
	Debug(args ...interface{})
}
