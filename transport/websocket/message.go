package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timeline/internal/entity"
)

const (
	actionConnect = "connect"
	actionMove    = "game:move"
	actionJump    = "game:jump"
	actionRestart = "game:restart"
	actionState   = "game:state"
	actionError   = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID string            `json:"session_id,omitempty"`
	Cell      *int              `json:"cell,omitempty"`
	Index     *int              `json:"index,omitempty"`
	Game      *entity.GameState `json:"game,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// connection serializes writes; gorilla allows a single concurrent writer.
type connection struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	sessionMu sync.Mutex
	sessionID string
	unwatch   func()
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{conn: conn}
}

func (that *connection) send(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err = that.conn.WriteJSON(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendError(action, text string) error {
	return that.send(action, Payload{Error: text})
}

func (that *connection) ping() error {
	return that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (that *connection) session() string {
	that.sessionMu.Lock()
	defer that.sessionMu.Unlock()

	return that.sessionID
}

// watch - remembers the session and replaces the previous subscription.
func (that *connection) watch(sessionID string, unwatch func()) {
	that.sessionMu.Lock()
	previous := that.unwatch
	that.sessionID = sessionID
	that.unwatch = unwatch
	that.sessionMu.Unlock()

	if previous != nil {
		previous()
	}
}

func (that *connection) close() {
	that.watch("", nil)
	_ = that.conn.Close()
}
