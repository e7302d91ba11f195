package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client is one connection bound to at most one game at a time.
type client struct {
	logger *slog.Logger
	conn   *websocket.Conn

	send chan []byte
	done chan struct{}

	mu       sync.Mutex
	gameID   string
	pending  *time.Timer
	pendGen  uint64
	closeOne sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	return &client{
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (that *client) GameID() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gameID
}

func (that *client) SetGameID(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = id
}

// Schedule runs fn after delay unless Cancel or another Schedule comes first.
func (that *client) Schedule(delay time.Duration, fn func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelLocked()

	that.pendGen++
	gen := that.pendGen

	that.pending = time.AfterFunc(delay, func() {
		that.mu.Lock()
		current := gen == that.pendGen
		if current {
			that.pending = nil
		}
		that.mu.Unlock()

		if current {
			fn()
		}
	})
}

func (that *client) Cancel() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.cancelLocked()
}

func (that *client) cancelLocked() {
	if that.pending != nil {
		that.pending.Stop()
		that.pending = nil
	}

	that.pendGen++
}

// Send queues a message. It returns an error once the connection is closed.
func (that *client) Send(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	select {
	case that.send <- data:
		return nil
	case <-that.done:
		return errConnectionClosed
	}
}

func (that *client) Close() {
	that.closeOne.Do(func() {
		that.Cancel()
		close(that.done)
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				that.Close()
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				that.Close()
				return
			}
		case <-that.done:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump hands every decoded message to handle until the peer goes away.
func (that *client) readPump(ctx context.Context, handle func(ctx context.Context, msg *Message)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("connection closed unexpectedly", "error", err)
			}

			return
		}

		var msg Message
		if err = json.Unmarshal(data, &msg); err != nil {
			that.logger.Debug("failed to unmarshal message", "error", err)
			_ = that.Send(actionError, Payload{Error: "invalid message"})

			continue
		}

		handle(ctx, &msg)
	}
}
