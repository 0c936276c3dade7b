package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by forwarding simulator messages to the
// server log and, when a channel is set, to a client console
type WebLogger struct {
	levelID     string
	consoleChan chan<- ConsoleMessage
	logger      *log.Logger
}

// NewWebLogger creates a new web logger for one level session. Both
// consoleChan and logger may be nil.
func NewWebLogger(levelID string, consoleChan chan<- ConsoleMessage, logger *log.Logger) core.Logger {
	return &WebLogger{
		levelID:     levelID,
		consoleChan: consoleChan,
		logger:      logger,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if wl.logger != nil {
		wl.logger.Info(strings.TrimSpace(message), "levelID", wl.levelID)
	}

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}
