package server

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("corridor", messageChan, nil)

	logger.Printf("%s\n", "Gate \"g1\" opened")

	select {
	case msg := <-messageChan:
		if msg.Message != "Gate \"g1\" opened\n" {
			t.Errorf("Expected message %q, got %q", "Gate \"g1\" opened\n", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_MultipleMessages(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := NewWebLogger("portal-hop", messageChan, nil)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s\n", msg)
	}

	for i, expected := range messages {
		select {
		case msg := <-messageChan:
			if msg.Message != expected+"\n" {
				t.Errorf("Message %d: expected %q, got %q", i, expected+"\n", msg.Message)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := NewWebLogger("full", messageChan, nil)

	logger.Printf("Message 1\n")
	// These must not block even though the channel is full
	logger.Printf("Message 2\n")
	logger.Printf("Message 3\n")

	if got := (<-messageChan).Message; got != "Message 1\n" {
		t.Errorf("Expected first message to be kept, got %q", got)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := NewWebLogger("nil", nil, nil)
	logger.Printf("Test message with nil channel\n")
}

func TestWebLogger_ForwardsToServerLog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWebLogger("spectrum", nil, log.New(&buf))

	logger.Printf("Level %q complete at %.2fs\n", "spectrum", 1.5)

	out := buf.String()
	if !strings.Contains(out, `Level "spectrum" complete at 1.50s`) {
		t.Errorf("server log missing message: %q", out)
	}
	if !strings.Contains(out, "levelID=spectrum") {
		t.Errorf("server log missing level key: %q", out)
	}
}
