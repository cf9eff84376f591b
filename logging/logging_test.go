package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingMessage struct {
	lvl       int
	displayed *int
}

func (cm *countingMessage) display() {
	*cm.displayed++
}

func (cm *countingMessage) level() int {
	return cm.lvl
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected int
	}{
		{"silent", LogLevelSilent},
		{"error", LogLevelError},
		{"warn", LogLevelWarning},
		{"warning", LogLevelWarning},
		{"verbose", LogLevelVerbose},
		{"loud", LogLevelVerbose},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, ParseLevel(tc.name), tc.name)
	}
}

func TestHandleMsg(t *testing.T) {
	l := newLogger(LogLevelWarning)
	displayed := 0

	l.handleMsg(&countingMessage{lvl: LogLevelVerbose, displayed: &displayed})
	l.handleMsg(&countingMessage{lvl: LogLevelWarning, displayed: &displayed})
	l.handleMsg(&countingMessage{lvl: LogLevelError, displayed: &displayed})

	require.Equal(t, 2, displayed)
	require.Equal(t, 1, l.errorCount)

	// errors are counted even when nothing is printed
	silent := newLogger(LogLevelSilent)
	silent.handleMsg(&countingMessage{lvl: LogLevelError, displayed: &displayed})
	require.Equal(t, 2, displayed)
	require.Equal(t, 1, silent.errorCount)
}

func TestErrorCount(t *testing.T) {
	Initialize("silent")
	defer Initialize("warning")

	before := ErrorCount()
	LogError("Parse", errors.New("bad input"))
	LogWarning("Parse", "ignored")
	require.Equal(t, before+1, ErrorCount())
}
