package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

func newTestURL(t *testing.T, delay time.Duration, allowedOrigins []string) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), entity.PlayerO)

	srv := httptest.NewServer(New(logger, games, delay, allowedOrigins))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestConn(t *testing.T, delay time.Duration) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(newTestURL(t, delay, nil), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
		_ = conn.Close()
	})

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload Payload) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: body}))
}

func receive(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func cell(i int) *int {
	return &i
}

func TestServer_ComputerReplyIsDeferred(t *testing.T) {
	// Given: a connection with a game against the computer
	conn := newTestConn(t, 20*time.Millisecond)
	send(t, conn, actionGameNew, Payload{Mode: "pvc"})
	action, payload := receive(t, conn)
	require.Equal(t, actionGameNew, action)
	require.NotNil(t, payload.Game)

	// When: X plays the center
	send(t, conn, actionGameTurn, Payload{Cell: cell(4)})

	// Then: the move is confirmed first while the computer thinks
	action, payload = receive(t, conn)
	require.Equal(t, actionGameTurn, action)
	assert.Equal(t, entity.PlayerX, payload.Game.Board[4])
	assert.Equal(t, "Computer is thinking...", payload.Status)

	// Then: the computer's move is pushed afterwards
	action, payload = receive(t, conn)
	require.Equal(t, actionGameComputer, action)
	assert.Equal(t, 1, payload.Game.Board.Count(entity.PlayerO))
	assert.Equal(t, "Player X's Turn", payload.Status)
}

func TestServer_ComputerOpensAsX(t *testing.T) {
	// Given: a connection
	conn := newTestConn(t, time.Millisecond)

	// When: a game is started where the computer plays X
	send(t, conn, actionGameNew, Payload{Mode: "pvc", ComputerMark: "X"})

	// Then: the new game arrives and then the computer's opening
	action, _ := receive(t, conn)
	require.Equal(t, actionGameNew, action)

	action, payload := receive(t, conn)
	require.Equal(t, actionGameComputer, action)
	assert.Equal(t, entity.PlayerX, payload.Game.Board[0])
}

func TestServer_RestartCancelsPendingMove(t *testing.T) {
	// Given: a pending computer move
	conn := newTestConn(t, 100*time.Millisecond)
	send(t, conn, actionGameNew, Payload{Mode: "pvc"})
	_, _ = receive(t, conn)
	send(t, conn, actionGameTurn, Payload{Cell: cell(0)})
	_, _ = receive(t, conn)

	// When: the game is restarted before the move fires
	send(t, conn, actionGameRestart, Payload{})
	action, payload := receive(t, conn)

	// Then: the board is clear and no computer move follows
	require.Equal(t, actionGameRestart, action)
	assert.Equal(t, entity.Board{}, payload.Game.Board)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestServer_Errors(t *testing.T) {
	t.Run("Turn without a game", func(t *testing.T) {
		conn := newTestConn(t, time.Millisecond)

		send(t, conn, actionGameTurn, Payload{Cell: cell(0)})
		action, payload := receive(t, conn)

		assert.Equal(t, actionGameTurn, action)
		assert.Equal(t, errNoGame.Error(), payload.Error)
	})

	t.Run("Unknown action", func(t *testing.T) {
		conn := newTestConn(t, time.Millisecond)

		send(t, conn, "game:join", Payload{})
		action, payload := receive(t, conn)

		assert.Equal(t, "game:join", action)
		assert.Equal(t, "unknown action", payload.Error)
	})

	t.Run("Occupied cell returns the unchanged game", func(t *testing.T) {
		// Given: a pvp game where X took the center
		conn := newTestConn(t, time.Millisecond)
		send(t, conn, actionGameNew, Payload{})
		_, _ = receive(t, conn)
		send(t, conn, actionGameTurn, Payload{Cell: cell(4)})
		_, _ = receive(t, conn)

		// When: O plays the center
		send(t, conn, actionGameTurn, Payload{Cell: cell(4)})
		action, payload := receive(t, conn)

		// Then: the move is refused and O is still to move
		assert.Equal(t, actionGameTurn, action)
		assert.NotEmpty(t, payload.Error)
		require.NotNil(t, payload.Game)
		assert.Equal(t, entity.PlayerO, payload.Game.Turn)
	})

	t.Run("Unknown game id", func(t *testing.T) {
		conn := newTestConn(t, time.Millisecond)

		send(t, conn, actionGameGet, Payload{GameID: "missing"})
		_, payload := receive(t, conn)

		assert.Contains(t, payload.Error, "game not found")
	})
}

func TestServer_ModeAndScores(t *testing.T) {
	// Given: a pvp game
	conn := newTestConn(t, time.Millisecond)
	send(t, conn, actionGameNew, Payload{})
	_, created := receive(t, conn)

	// When: the current mode is selected again
	send(t, conn, actionGameMode, Payload{Mode: "pvp"})
	action, payload := receive(t, conn)

	// Then: the game is unchanged
	require.Equal(t, actionGameMode, action)
	assert.Equal(t, created.Game, payload.Game)

	// When: scores are reset
	send(t, conn, actionScoresReset, Payload{})
	action, payload = receive(t, conn)

	// Then: the counters are zero
	require.Equal(t, actionScoresReset, action)
	assert.Equal(t, entity.ScoreBoard{}, payload.Game.Scores)
}

func TestServer_ModeIsRequired(t *testing.T) {
	// Given: a pvp game where X took the center
	conn := newTestConn(t, time.Millisecond)
	send(t, conn, actionGameNew, Payload{})
	_, _ = receive(t, conn)
	send(t, conn, actionGameTurn, Payload{Cell: cell(4)})
	_, _ = receive(t, conn)

	// When: a mode change arrives without a mode
	send(t, conn, actionGameMode, Payload{})
	action, payload := receive(t, conn)

	// Then: it is refused
	require.Equal(t, actionGameMode, action)
	assert.Contains(t, payload.Error, "unknown game mode")

	// Then: the game in progress is untouched
	send(t, conn, actionGameGet, Payload{})
	_, payload = receive(t, conn)
	require.NotNil(t, payload.Game)
	assert.Equal(t, entity.PlayerX, payload.Game.Board[4])
	assert.Equal(t, entity.PlayerO, payload.Game.Turn)
}

func TestServer_CheckOrigin(t *testing.T) {
	dial := func(t *testing.T, url, origin string) (*websocket.Conn, *http.Response, error) {
		t.Helper()

		header := http.Header{}
		header.Set("Origin", origin)

		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		t.Cleanup(func() {
			if resp != nil {
				_ = resp.Body.Close()
			}
			if conn != nil {
				_ = conn.Close()
			}
		})

		return conn, resp, err
	}

	t.Run("Foreign origin is refused", func(t *testing.T) {
		// Given: a server without extra origins
		url := newTestURL(t, time.Millisecond, nil)

		// When: a page from another site connects
		_, resp, err := dial(t, url, "http://attacker.example")

		// Then: the handshake fails with forbidden
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Configured origin is accepted", func(t *testing.T) {
		// Given: a server that allows the web client's origin
		url := newTestURL(t, time.Millisecond, []string{"http://localhost:3000"})

		// When: the web client connects
		conn, _, err := dial(t, url, "http://localhost:3000")

		// Then: the connection is open and serves games
		require.NoError(t, err)
		send(t, conn, actionGameNew, Payload{})
		action, payload := receive(t, conn)
		assert.Equal(t, actionGameNew, action)
		assert.NotNil(t, payload.Game)
	})

	t.Run("Same host is accepted", func(t *testing.T) {
		// Given: a server without extra origins
		url := newTestURL(t, time.Millisecond, nil)

		// When: a page served by the same host connects
		_, _, err := dial(t, url, "http://"+strings.TrimPrefix(url, "ws://"))

		// Then: the handshake succeeds
		require.NoError(t, err)
	})
}

func TestClient_Schedule(t *testing.T) {
	// Given: a client with a scheduled callback
	c := newClient(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	fired := make(chan struct{}, 2)

	c.Schedule(50*time.Millisecond, func() { fired <- struct{}{} })

	// When: it is cancelled and a second one is scheduled
	c.Cancel()
	c.Schedule(time.Millisecond, func() { fired <- struct{}{} })

	// Then: only the second one fires
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback did not fire")
	}

	select {
	case <-fired:
		t.Fatal("cancelled callback fired")
	case <-time.After(100 * time.Millisecond):
	}
}
