package logging

import "errors"

// logger is a global reference to a shared Logger: the CLI initializes it,
// library use keeps the default level
var logger = newLogger(LogLevelWarning)

// Initialize sets the level of the global logger by name
func Initialize(loglevelname string) {
	logger.m.Lock()
	logger.LogLevel = ParseLevel(loglevelname)
	logger.m.Unlock()
}

// ParseLevel converts the name of a log level into its value
func ParseLevel(loglevelname string) int {
	switch loglevelname {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarning
	// everything else (including invalid log levels) should default to verbose
	default:
		return LogLevelVerbose
	}
}

// ErrorCount returns the number of errors logged so far
func ErrorCount() int {
	logger.m.Lock()
	defer logger.m.Unlock()

	return logger.errorCount
}

// -----------------------------------------------------------------------------
// NOTE: All log functions will only display if the appropriate log level is
// set.  They fail silently if below their level.

// LogInfo logs progress information (grammar loading, cache misses)
func LogInfo(tag, msg string) {
	logger.handleMsg(&textMessage{tag: tag, msg: msg, lvl: LogLevelVerbose})
}

// LogWarning logs a problem that does not stop the current operation
func LogWarning(tag, msg string) {
	logger.handleMsg(&textMessage{tag: tag, msg: msg, lvl: LogLevelWarning})
}

// LogError logs an error that stopped an operation
func LogError(tag string, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	logger.handleMsg(&textMessage{tag: tag, msg: err.Error(), lvl: LogLevelError})
}
