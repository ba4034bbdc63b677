package controller

// Logger interface for controller logging
type Logger interface {
	Printf(format string, v ...interface{})
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// NopLogger discards everything. Used when no logger is configured.
type NopLogger struct{}

func (NopLogger) Printf(format string, v ...interface{}) {}
func (NopLogger) Debug(format string, v ...interface{})  {}
func (NopLogger) Info(format string, v ...interface{})   {}
func (NopLogger) Warn(format string, v ...interface{})   {}
func (NopLogger) Error(format string, v ...interface{})  {}
