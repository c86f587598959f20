package utils

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

type LoggerHandler struct {
	mu     sync.Mutex
	logger *logrus.Logger
}

func NewLoggerHandler(level, format string) *LoggerHandler {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	l := &LoggerHandler{logger: logger}
	l.SetLevel(level)
	l.SetFormat(format)
	return l
}

func parseLogLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func shouldUseColor() bool {
	if strings.EqualFold(os.Getenv("NO_COLOR"), "1") || strings.EqualFold(os.Getenv("NO_COLOR"), "true") {
		return false
	}
	if strings.EqualFold(os.Getenv("LOG_COLOR"), "0") || strings.EqualFold(os.Getenv("LOG_COLOR"), "false") {
		return false
	}
	return true
}

func (l *LoggerHandler) SetLevel(level string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetLevel(parseLogLevel(level))
}

// SetFormat switches between the colored text formatter and JSON lines.
func (l *LoggerHandler) SetFormat(format string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		l.logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	l.logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		ForceColors:     shouldUseColor(),
		DisableColors:   !shouldUseColor(),
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

func (l *LoggerHandler) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *LoggerHandler) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *LoggerHandler) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *LoggerHandler) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *LoggerHandler) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *LoggerHandler) WithFields(fields Fields) *logrus.Entry {
	return l.logger.WithFields(fields)
}

var defaultLogger = NewLoggerHandler(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

func SetLogLevel(level string) {
	defaultLogger.SetLevel(level)
}

func SetLogFormat(format string) {
	defaultLogger.SetFormat(format)
}

func SetLogOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

func Debugf(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

func WithFields(fields Fields) *logrus.Entry {
	return defaultLogger.WithFields(fields)
}
