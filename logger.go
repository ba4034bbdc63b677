package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LeveledLogger wraps a zap logger with printf-style level methods
type LeveledLogger struct {
	logger   *zap.SugaredLogger
	level    zap.AtomicLevel
	logLevel LogLevel
}

// NewLeveledLogger creates a new leveled logger writing to stderr
func NewLeveledLogger(name string, level LogLevel) (*LeveledLogger, error) {
	atom := zap.NewAtomicLevelAt(level.zapLevel())

	config := zap.NewProductionConfig()
	config.Level = atom
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &LeveledLogger{
		logger:   logger.Named(name).Sugar(),
		level:    atom,
		logLevel: level,
	}, nil
}

// NewLeveledLoggerFrom wraps an existing zap logger
func NewLeveledLoggerFrom(logger *zap.Logger, level LogLevel) *LeveledLogger {
	return &LeveledLogger{
		logger:   logger.Sugar(),
		level:    zap.NewAtomicLevelAt(level.zapLevel()),
		logLevel: level,
	}
}

// Debug logs a message at DEBUG level
func (l *LeveledLogger) Debug(format string, v ...interface{}) {
	if l.logLevel >= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

// Info logs a message at INFO level
func (l *LeveledLogger) Info(format string, v ...interface{}) {
	if l.logLevel >= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

// Warn logs a message at WARN level
func (l *LeveledLogger) Warn(format string, v ...interface{}) {
	if l.logLevel >= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

// Error logs a message at ERROR level
func (l *LeveledLogger) Error(format string, v ...interface{}) {
	if l.logLevel >= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}

// Printf provides compatibility with standard logger - logs at INFO level
func (l *LeveledLogger) Printf(format string, v ...interface{}) {
	l.Info(format, v...)
}

// Fatalf logs a fatal error and exits
func (l *LeveledLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf(format, v...)
}

// SetLevel changes the log level
func (l *LeveledLogger) SetLevel(level LogLevel) {
	l.logLevel = level
	l.level.SetLevel(level.zapLevel())
}

// GetLevel returns the current log level
func (l *LeveledLogger) GetLevel() LogLevel {
	return l.logLevel
}

// Sync flushes buffered log entries
func (l *LeveledLogger) Sync() {
	_ = l.logger.Sync()
}

// DebugCAN logs CAN frame details at DEBUG level with formatting
func (l *LeveledLogger) DebugCAN(direction string, id uint32, data []byte, length uint8) {
	if l.logLevel < LogLevelDebug {
		return
	}
	var sb strings.Builder
	for i := uint8(0); i < length && i < 8 && int(i) < len(data); i++ {
		fmt.Fprintf(&sb, "%02X ", data[i])
	}
	l.logger.Debugf("CAN %s: ID=0x%03X Len=%d Data=[%s]", direction, id, length, sb.String())
}

func (level LogLevel) zapLevel() zapcore.Level {
	switch level {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelInfo:
		return zapcore.InfoLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}
