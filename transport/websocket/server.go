package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var errConnectionClosed = errors.New("connection closed")

type gameUseCase interface {
	NewGame(ctx context.Context, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	PlayerMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	ComputerMove(ctx context.Context, id string) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
	SetMode(ctx context.Context, id string, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	ResetScores(ctx context.Context, id string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, c *client, payload *Payload) error

type Server struct {
	logger *slog.Logger
	games  gameUseCase

	// computerDelay is how long the computer "thinks" before its move is pushed.
	computerDelay time.Duration

	// allowedOrigins are cross-origin pages that may connect besides the serving host.
	allowedOrigins []string

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameUseCase, computerDelay time.Duration, allowedOrigins []string) *Server {
	server := &Server{
		logger:         logger.With("component", "websocket"),
		games:          games,
		computerDelay:  computerDelay,
		allowedOrigins: allowedOrigins,
	}

	server.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	server.handlers = map[string]handlerFunc{
		actionGameNew:     server.handleNewGame,
		actionGameGet:     server.handleGetGame,
		actionGameTurn:    server.handleGameTurn,
		actionGameRestart: server.handleRestart,
		actionGameMode:    server.handleSetMode,
		actionScoresReset: server.handleResetScores,
	}

	return server
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newClient(that.logger, conn)
	defer c.Close()

	go c.writePump()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	c.readPump(ctx, func(ctx context.Context, msg *Message) {
		that.handleMessage(ctx, c, msg)
	})

	log.Debug("WebSocket connection closed", "gameID", c.GameID())
}

func (that *Server) handleMessage(ctx context.Context, c *client, msg *Message) {
	log := that.logger.With("method", "handleMessage", "action", msg.Action)

	handler, ok := that.handlers[msg.Action]
	if !ok {
		log.Debug("unknown action")
		_ = c.Send(msg.Action, Payload{Error: "unknown action"})

		return
	}

	var payload Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			_ = c.Send(msg.Action, Payload{Error: "invalid payload"})
			return
		}
	}

	if err := handler(ctx, c, &payload); err != nil {
		log.Error("error processing message", "error", err)
	}
}

// checkOrigin accepts clients without an Origin header, pages served by the same host
// and the configured origins.
func (that *Server) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range that.allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if strings.EqualFold(parsed.Host, req.Host) {
		return true
	}

	that.logger.Warn("rejected websocket origin", "origin", origin, "host", req.Host)

	return false
}
