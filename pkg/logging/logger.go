package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	return NewLogger(writer, level, FormatJSON)
}

// NewLogger creates a logger with an explicit line format.
func NewLogger(writer io.Writer, level Level, format Format) *JSONLogger {
	return &JSONLogger{
		writer: writer,
		format: format,
		now:    time.Now,
		fields: make([]Field, 0),
		state:  &loggerState{level: level},
	}
}

// NewFileLogger appends to path, creating it if needed. The TUI owns the
// terminal, so interactive sessions log here instead of stdout.
func NewFileLogger(path string, level Level, format Format) (*JSONLogger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewLogger(f, level, format), f, nil
}

// log is the internal logging method
func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	if level < l.state.level {
		return
	}

	// Later keys win, so call-site fields override With fields
	fieldMap := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	ts := l.now().Format(time.RFC3339Nano)

	if l.format == FormatText {
		l.writeText(ts, level, msg, fieldMap)
		return
	}

	entry := LogEntry{
		Time:    ts,
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		entry.Fields = fieldMap
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}

	data = append(data, '\n')
	_, _ = l.writer.Write(data)
}

func (l *JSONLogger) writeText(ts string, level Level, msg string, fieldMap map[string]any) {
	var b strings.Builder
	b.WriteString(ts)
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s", level.String())
	b.WriteByte(' ')
	b.WriteString(msg)

	keys := make([]string, 0, len(fieldMap))
	for k := range fieldMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fmt.Sprint(fieldMap[k])
		if strings.ContainsAny(v, " \t\"=") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.writer, b.String())
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

// With creates a child logger with the given fields pre-set
func (l *JSONLogger) With(fields ...Field) Logger {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &JSONLogger{
		writer: l.writer,
		format: l.format,
		now:    l.now,
		fields: newFields,
		state:  l.state,
	}
}

// SetLevel sets the minimum log level for this logger and all its children
func (l *JSONLogger) SetLevel(level Level) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	l.state.level = level
}

// GetLevel returns the current log level
func (l *JSONLogger) GetLevel() Level {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.level
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

// End logs the operation at debug level with its duration
func (t *TimedOperation) End() time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Debug(t.msg, append(t.fields, Latency(elapsed))...)
	return elapsed
}

// EndError logs the operation as an error with its duration
func (t *TimedOperation) EndError(err error) time.Duration {
	elapsed := time.Since(t.start)
	t.logger.Error(t.msg, append(t.fields, Latency(elapsed), Error(err))...)
	return elapsed
}
