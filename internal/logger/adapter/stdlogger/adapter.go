// Package stdlogger adapts the global zerolog logger to printf style logger interfaces
// such as the gorm logger writer.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// New returns a Logger using the global zerolog logger.
func New() *Logger {
	return &Logger{}
}

// NewComponent returns a Logger tagging every entry with the component name.
func NewComponent(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) event(level zerolog.Level) *zerolog.Event {
	e := log.WithLevel(level)
	if l.component != "" {
		e = e.Str("component", l.component)
	}

	return e
}

// Infof logs at info level.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.event(zerolog.InfoLevel).Msgf(format, v...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.event(zerolog.ErrorLevel).Msgf(format, v...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, v ...interface{}) {
	l.event(zerolog.WarnLevel).Msgf(format, v...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.event(zerolog.DebugLevel).Msgf(format, v...)
}

// Printf implements the gorm logger.Writer interface.
// gorm prefixes its messages with the source file, newlines are flattened.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.event(zerolog.DebugLevel).Msgf(strings.ReplaceAll(format, "\n", " "), v...)
}
