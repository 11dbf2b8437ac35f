package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"vidhub/internal/errors"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

type options struct {
	out    io.Writer
	json   bool
	file   string
	level  logrus.Level
	stderr string
}

// Option configures a Logger
type Option func(*options)

// WithOutput sends log lines to w
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to the logrus JSON formatter
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile appends log lines to path in addition to the main output
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error")
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// WithStderr controls whether lines go to stderr when no output is given:
// "auto" (only when stderr is not a terminal or debug is on), "always" or "never".
func WithStderr(mode string) Option {
	return func(o *options) { o.stderr = mode }
}

// Logger wraps a logrus entry so callers keep the package's small API
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// NewLogger builds a logger; without options it writes text lines to stderr
func NewLogger(opts ...Option) *Logger {
	o := &options{level: logrus.InfoLevel, stderr: "always"}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	// Debug gating is done by SetDebug so it can be flipped after construction.
	base.SetLevel(logrus.DebugLevel)
	isDebug.Store(o.level >= logrus.DebugLevel)
	if o.level < logrus.InfoLevel {
		base.SetLevel(o.level)
	}

	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	} else {
		base.SetFormatter(&TextFormatter{})
	}

	var writers []io.Writer
	if o.out != nil {
		writers = append(writers, o.out)
	} else if shouldUseStderr(o.stderr) {
		writers = append(writers, os.Stderr)
	}

	l := &Logger{}
	if o.file != "" {
		if err := os.MkdirAll(filepath.Dir(o.file), 0755); err == nil {
			f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				l.file = f
				writers = append(writers, f)
			}
		}
	}

	switch len(writers) {
	case 0:
		base.SetOutput(io.Discard)
	case 1:
		base.SetOutput(writers[0])
	default:
		base.SetOutput(io.MultiWriter(writers...))
	}

	l.entry = logrus.NewEntry(base)
	return l
}

func shouldUseStderr(mode string) bool {
	switch mode {
	case "never":
		return false
	case "auto":
		interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug.Load() || !interactive
	default:
		return true
	}
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	prev := logger
	logger = NewLogger(opts...)
	if prev != nil && prev.file != nil {
		prev.file.Close()
	}
}

// SetDebug toggles debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// For returns the package logger tagged with a component name
func For(component string) *Logger {
	return logger.With(F("component", component))
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithError attaches err and, for application errors, its kind and details
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error()), F("error_kind", int(errors.KindOf(err)))}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var bridgeErr *errors.BridgeError
	if errors.As(err, &bridgeErr) {
		if bridgeErr.Message() != "" {
			fields = append(fields, F("message", bridgeErr.Message()))
		}
		for k, v := range bridgeErr.Context() {
			fields = append(fields, F(k, v))
		}
	}
	return l.With(fields...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Info(sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Info(fmt.Sprintf(format, args...))
}

// Debug logs a message with arguments
func (l *Logger) Debug(msg string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debug(sprintf(msg, args...))
	}
}

// Debugf logs a formatted message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debug(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry.Warn(sprintf(msg, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry.Error(sprintf(msg, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Error(fmt.Sprintf(format, args...))
}

// sprintf keeps plain messages intact when no args are given
func sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func Info(format string, args ...interface{}) {
	logger.Info(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a message with arguments
func Debug(msg string, args ...interface{}) {
	logger.Debug(msg, args...)
}

// Debugf logs a formatted message
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Error logs an error message with arguments
func Error(msg string, args ...interface{}) {
	logger.Error(msg, args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Warn logs a warning message with arguments
func Warn(msg string, args ...interface{}) {
	logger.Warn(msg, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogWithFields returns the package logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger with err attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with msg
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}
