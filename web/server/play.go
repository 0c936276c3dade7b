package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-lightpath/pkg/game"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultTickRate = 20 // frames per second pushed to the client
	writeWait       = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PlayMessage is one msgpack message pushed on the play socket
type PlayMessage struct {
	Type    string          `json:"type"` // "frame", "console", "error"
	Frame   *sim.Frame      `json:"frame,omitempty"`
	Console *ConsoleMessage `json:"console,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// handlePlay runs a live game session over a websocket. Clients send JSON
// commands and receive msgpack frames. rate=0 disables the clock so the
// client drives time with advance commands.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	lvl, err := s.loadLevel(values.Get("level"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	rate, err := parseIntParam(values, "rate", defaultTickRate, 0, 60)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	consoleChan := make(chan ConsoleMessage, 32)
	session := game.NewSession(lvl, NewWebLogger(lvl.ID, consoleChan, s.logger))
	s.logger.Info("Play session started", "level", lvl.ID, "remote", r.RemoteAddr, "rate", rate)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	commands := make(chan game.Command, 16)
	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd game.Command
			if err := json.Unmarshal(data, &cmd); err != nil {
				continue
			}
			select {
			case commands <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()

	var tick <-chan time.Time
	if rate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()
		tick = ticker.C
	}

	sendFrame := func(frame sim.Frame) error {
		return writeMsgpack(conn, PlayMessage{Type: "frame", Frame: &frame})
	}

	if err := sendFrame(session.Frame()); err != nil {
		return
	}

	last := time.Now()
	for {
		var err error
		select {
		case <-ctx.Done():
			s.logger.Info("Play session ended", "level", lvl.ID, "elapsed", session.Runtime().Elapsed)
			return
		case cmd := <-commands:
			if applyErr := session.Apply(cmd); applyErr != nil {
				err = writeMsgpack(conn, PlayMessage{Type: "error", Error: applyErr.Error()})
			} else {
				err = sendFrame(session.Frame())
			}
		case msg := <-consoleChan:
			err = writeMsgpack(conn, PlayMessage{Type: "console", Console: &msg})
		case now := <-tick:
			err = sendFrame(session.Advance(now.Sub(last).Seconds()))
			last = now
		}
		if err != nil {
			s.logger.Warn("Play session write failed", "level", lvl.ID, "err", err)
			return
		}
	}
}

// writeMsgpack encodes msg with the json field names and sends it as one
// binary message
func writeMsgpack(conn *websocket.Conn, msg PlayMessage) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(msg); err != nil {
		return fmt.Errorf("failed to encode %s message: %w", msg.Type, err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}
