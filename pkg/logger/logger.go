// Package logger is the structured logger shared by the BookHub binaries.
// It keeps a small key/value API on top of zerolog so call sites read
// log.Info("event_name", "key", value).
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel string

const (
	DEBUG LogLevel = "debug"
	INFO  LogLevel = "info"
	WARN  LogLevel = "warn"
	ERROR LogLevel = "error"
)

type Logger struct {
	zl zerolog.Logger
}

var (
	global *Logger
	mu     sync.RWMutex
)

// Init replaces the global logger. A nil writer discards output.
func Init(level LogLevel, jsonFormat bool, w io.Writer) {
	l := New(level, jsonFormat, w)
	mu.Lock()
	global = l
	mu.Unlock()
}

func New(level LogLevel, jsonFormat bool, w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}

	out := w
	if !jsonFormat {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: w != os.Stdout}
	}

	zl := zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}
}

// GetLogger returns the global logger, initialising an INFO/stdout one on
// first use.
func GetLogger() *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = New(INFO, true, os.Stdout)
	}
	return global
}

// WithContext returns a child logger that always carries key=value.
func (l *Logger) WithContext(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.emit(l.zl.Error(), msg, fields)
}

// emit accepts either alternating key/value pairs or a single
// map[string]interface{}.
func (l *Logger) emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	if len(fields) == 1 {
		if m, ok := fields[0].(map[string]interface{}); ok {
			ev.Fields(m).Msg(msg)
			return
		}
	}
	if len(fields)%2 != 0 {
		fields = append(fields[:len(fields)-1:len(fields)-1], "extra", fields[len(fields)-1])
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = "field"
		}
		if err, isErr := fields[i+1].(error); isErr {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}

func Debug(msg string, fields ...interface{}) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...interface{})  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...interface{})  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...interface{}) { GetLogger().Error(msg, fields...) }

func parseLevel(level LogLevel) zerolog.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN, "warning":
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
