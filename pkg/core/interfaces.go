package core

// Logger interface for simulator logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Logf writes to logger when it is not nil
func Logf(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
