package websocket

import (
	"encoding/json"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	actionGameNew      = "game:new"
	actionGameGet      = "game:get"
	actionGameTurn     = "game:turn"
	actionGameRestart  = "game:restart"
	actionGameMode     = "game:mode"
	actionScoresReset  = "scores:reset"
	actionGameComputer = "game:computer"
	actionError        = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 16
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is shared by requests and responses; each action reads the fields it needs.
type Payload struct {
	GameID       string       `json:"game_id,omitempty"`
	Mode         string       `json:"mode,omitempty"`
	ComputerMark string       `json:"computer_mark,omitempty"`
	Cell         *int         `json:"cell,omitempty"`
	Game         *entity.Game `json:"game,omitempty"`
	Status       string       `json:"status,omitempty"`
	Error        string       `json:"error,omitempty"`
}
