package logx

import (
	"context"
	"fmt"
	"maps"
)

// Entry allows for building up log entries with multiple fields. Each
// With* call returns a new Entry so a base entry can be shared.
type Entry struct {
	logger *Logger
	fields Fields
	data   any
	err    error
	ctx    context.Context
}

// newEntry creates a new entry
func newEntry(logger *Logger) *Entry {
	return &Entry{
		logger: logger,
		fields: make(Fields),
	}
}

func (e *Entry) clone() *Entry {
	next := *e
	next.fields = maps.Clone(e.fields)
	return &next
}

// WithField adds a field to the entry (chainable)
func (e *Entry) WithField(key string, value any) *Entry {
	next := e.clone()
	next.fields[key] = value
	return next
}

// WithFields adds multiple fields to the entry (chainable)
func (e *Entry) WithFields(fields Fields) *Entry {
	next := e.clone()
	maps.Copy(next.fields, fields)
	return next
}

// WithError adds an error field (chainable)
func (e *Entry) WithError(err error) *Entry {
	next := e.clone()
	next.err = err
	return next
}

// WithContext adds context (chainable). A request id stored under
// RequestIDKey is copied into the fields.
func (e *Entry) WithContext(ctx context.Context) *Entry {
	next := e.clone()
	next.ctx = ctx
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		next.fields["request_id"] = id
	}
	return next
}

// WithStruct adds structured data (chainable)
func (e *Entry) WithStruct(data any) *Entry {
	next := e.clone()
	next.data = data
	return next
}

// Trace logs at trace level
func (e *Entry) Trace(msg string) { e.logger.log(LevelTrace, msg, e.fields, e.data, e.err) }

// Debug logs at debug level
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.data, e.err) }

// Info logs at info level
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields, e.data, e.err) }

// Warn logs at warn level
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields, e.data, e.err) }

// Error logs at error level
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.data, e.err) }

// Fatal logs at fatal level and exits
func (e *Entry) Fatal(msg string) {
	e.logger.log(LevelFatal, msg, e.fields, e.data, e.err)
	e.logger.exit(1)
}

// Debugf logs formatted debug message
func (e *Entry) Debugf(format string, args ...any) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields, e.data, e.err)
}

// Infof logs formatted info message
func (e *Entry) Infof(format string, args ...any) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields, e.data, e.err)
}

// Warnf logs formatted warn message
func (e *Entry) Warnf(format string, args ...any) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields, e.data, e.err)
}

// Errorf logs formatted error message
func (e *Entry) Errorf(format string, args ...any) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields, e.data, e.err)
}
