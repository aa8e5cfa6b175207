package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const (
	logFilePerms       os.FileMode = 0644
	logTimestampFormat             = "2006-01-02 15:04:05"
)

type LogrusConfig struct {
	EnableConsole bool
	EnableFile    bool
	Structured    bool
	Level         logrus.Level
	FileLocation  string
}

// LogrusLogger adapts a logrus logger to the library's Logger interface. Output keeps the
// originally-configured destination even when the dynamic UI temporarily redirects the
// logger into a buffer, so buffered lines can be flushed to the right place afterwards.
type LogrusLogger struct {
	Config LogrusConfig
	Logger *logrus.Logger
	Output io.Writer
}

func NewLogrusLogger(cfg LogrusConfig) *LogrusLogger {
	appLogger := logrus.New()

	output := destination(cfg)
	appLogger.SetOutput(output)
	appLogger.SetLevel(cfg.Level)
	appLogger.SetFormatter(formatterFor(cfg))

	return &LogrusLogger{
		Config: cfg,
		Logger: appLogger,
		Output: output,
	}
}

// destination picks where log lines land. A log file that cannot be opened is fatal: the
// operator asked for one, so dropping lines silently is worse than dying on startup.
func destination(cfg LogrusConfig) io.Writer {
	var sinks []io.Writer
	if cfg.EnableConsole {
		sinks = append(sinks, os.Stderr)
	}
	if cfg.EnableFile {
		logFile, err := os.OpenFile(cfg.FileLocation, os.O_WRONLY|os.O_CREATE|os.O_APPEND, logFilePerms)
		if err != nil {
			panic(fmt.Errorf("unable to setup log file: %w", err))
		}
		sinks = append(sinks, logFile)
	}

	switch len(sinks) {
	case 0:
		return io.Discard
	case 1:
		return sinks[0]
	default:
		return io.MultiWriter(sinks...)
	}
}

func formatterFor(cfg LogrusConfig) logrus.Formatter {
	if cfg.Structured {
		return &logrus.JSONFormatter{
			TimestampFormat: logTimestampFormat,
		}
	}
	return &prefixed.TextFormatter{
		TimestampFormat: logTimestampFormat,
		ForceColors:     true,
		ForceFormatting: true,
	}
}

func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.Logger.Errorf(format, args...)
}

func (l *LogrusLogger) Error(args ...interface{}) {
	l.Logger.Error(args...)
}

func (l *LogrusLogger) Warnf(format string, args ...interface{}) {
	l.Logger.Warnf(format, args...)
}

func (l *LogrusLogger) Warn(args ...interface{}) {
	l.Logger.Warn(args...)
}

func (l *LogrusLogger) Infof(format string, args ...interface{}) {
	l.Logger.Infof(format, args...)
}

func (l *LogrusLogger) Info(args ...interface{}) {
	l.Logger.Info(args...)
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.Logger.Debugf(format, args...)
}

func (l *LogrusLogger) Debug(args ...interface{}) {
	l.Logger.Debug(args...)
}
