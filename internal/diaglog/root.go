package diaglog

import "sync/atomic"

var defaultLogger atomic.Pointer[StructuredLogger]

func init() {
	logger := NewStructured()
	logger.SetWriter(StdoutTerminal())
	defaultLogger.Store(logger)
}

// Default returns the current process-wide logger.
func Default() *StructuredLogger { return defaultLogger.Load() }

// SetDefault replaces the process-wide logger.
func SetDefault(logger *StructuredLogger) { defaultLogger.Store(logger) }

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().Fatal(msg, fields...) }

// SetLevel sets the minimum level logged by the default logger.
func SetLevel(level Level) { Default().SetLevel(level) }

// SetWriter sets the output sink of the default logger.
func SetWriter(w Writer) { Default().SetWriter(w) }
