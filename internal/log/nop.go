package log

// nopLogger is the default sink: every message is dropped until an embedding application
// installs a real logger.
type nopLogger struct{}

func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Error(args ...interface{})                 {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                  {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Info(args ...interface{})                  {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Debug(args ...interface{})                 {}
