package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		out:   &output{writer: writer, now: time.Now},
		level: level,
	}
}

// NewDefaultLogger creates a logger that writes to stdout at INFO level
func NewDefaultLogger() *JSONLogger {
	return NewJSONLogger(os.Stdout, InfoLevel)
}

// log is the internal logging method
func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.mu.Lock()
	threshold := l.level
	preset := l.fields
	l.mu.Unlock()

	if level < threshold {
		return
	}

	fieldMap := make(map[string]any, len(preset)+len(fields))
	for _, f := range preset {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	entry := LogEntry{
		Time:    l.out.now().UTC().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		// Fallback to simple text logging if JSON marshal fails
		l.out.mu.Lock()
		fmt.Fprintf(l.out.writer, "[ERROR] Failed to marshal log entry %q: %v\n", msg, err)
		l.out.mu.Unlock()
		return
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.writer.Write(append(data, '\n'))
}

// Debug logs a debug-level message
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(DebugLevel, msg, fields...)
}

// Info logs an info-level message
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(InfoLevel, msg, fields...)
}

// Warn logs a warning-level message
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(WarnLevel, msg, fields...)
}

// Error logs an error-level message
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(ErrorLevel, msg, fields...)
}

// With creates a child logger with the given fields pre-set. The child
// shares the parent's output.
func (l *JSONLogger) With(fields ...Field) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &JSONLogger{
		out:    l.out,
		level:  l.level,
		fields: newFields,
	}
}

// SetLevel sets the minimum log level
func (l *JSONLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Global default logger
var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
	once          sync.Once
)

// DefaultLogger returns the global default logger, writing to stdout at the
// level named by LOG_LEVEL
func DefaultLogger() Logger {
	once.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultLogger == nil {
			defaultLogger = NewJSONLogger(os.Stdout, ParseLevel(os.Getenv("LOG_LEVEL")))
		}
	})
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// Info logs an info-level message using the default logger
func Info(msg string, fields ...Field) {
	DefaultLogger().Info(msg, fields...)
}

// Warn logs a warning-level message using the default logger
func Warn(msg string, fields ...Field) {
	DefaultLogger().Warn(msg, fields...)
}

// ErrorLog logs an error-level message using the default logger
// Named ErrorLog to avoid conflict with Error field constructor
func ErrorLog(msg string, fields ...Field) {
	DefaultLogger().Error(msg, fields...)
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// Elapsed returns the time since the timer started
func (t *TimedOperation) Elapsed() time.Duration {
	return time.Since(t.start)
}

// End logs the operation at debug level and returns its duration
func (t *TimedOperation) End(fields ...Field) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Debug(t.msg, t.with(elapsed, fields)...)
	return elapsed
}

// EndWarn logs the operation as a warning and returns its duration
func (t *TimedOperation) EndWarn(err error, fields ...Field) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Warn(t.msg, t.with(elapsed, append(fields, Error(err)))...)
	return elapsed
}

// EndError logs the operation as an error and returns its duration
func (t *TimedOperation) EndError(err error, fields ...Field) time.Duration {
	elapsed := t.Elapsed()
	t.logger.Error(t.msg, t.with(elapsed, append(fields, Error(err)))...)
	return elapsed
}

func (t *TimedOperation) with(elapsed time.Duration, extra []Field) []Field {
	fields := make([]Field, 0, len(t.fields)+len(extra)+1)
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	return append(fields, Latency(elapsed))
}
