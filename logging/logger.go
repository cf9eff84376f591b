package logging

import (
	"sync"
)

// Logger filters the messages of the codec and the CLI by level and prints
// the ones that pass
type Logger struct {
	errorCount int // Total logged errors
	LogLevel   int

	// m synchronizes printing: codecs are shared between goroutines
	m *sync.Mutex
}

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors
	LogLevelWarning        // errors and warnings (DEFAULT)
	LogLevelVerbose        // errors, warnings, grammar loading and cache activity
)

// LogMessage is a message the logger can display
type LogMessage interface {
	display()
	level() int
}

// newLogger creates a new logger struct
func newLogger(loglevel int) Logger {
	return Logger{
		LogLevel: loglevel,
		m:        &sync.Mutex{},
	}
}

// handleMsg counts errors and displays the message if the log level allows it
func (l *Logger) handleMsg(lm LogMessage) {
	l.m.Lock()
	defer l.m.Unlock()

	if lm.level() == LogLevelError {
		l.errorCount++
	}

	if l.LogLevel >= lm.level() {
		lm.display()
	}
}

// -----------------------------------------------------------------------------

// textMessage is a tagged one line message
type textMessage struct {
	tag, msg string
	lvl      int
}

func (tm *textMessage) level() int {
	return tm.lvl
}
