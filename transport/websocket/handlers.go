package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

var (
	errNoGame       = errors.New("no game selected")
	errCellRequired = errors.New("cell is required")
)

func (that *Server) handleNewGame(ctx context.Context, c *client, payload *Payload) error {
	mode, mark, err := parseModeAndMark(payload.Mode, payload.ComputerMark, entity.ModePvP)
	if err != nil {
		return that.sendErrorResponse(c, actionGameNew, err)
	}

	c.Cancel()

	game, err := that.games.NewGame(ctx, mode, mark)
	if err != nil {
		return that.sendErrorResponse(c, actionGameNew, err)
	}

	c.SetGameID(game.ID)

	return that.sendGame(ctx, c, actionGameNew, game)
}

// handleGetGame attaches the connection to an existing game, e.g. after a reconnect.
func (that *Server) handleGetGame(ctx context.Context, c *client, payload *Payload) error {
	id := payload.GameID
	if id == "" {
		id = c.GameID()
	}

	if id == "" {
		return that.sendErrorResponse(c, actionGameGet, errNoGame)
	}

	game, err := that.games.GetGame(ctx, id)
	if err != nil {
		return that.sendErrorResponse(c, actionGameGet, err)
	}

	if id != c.GameID() {
		c.Cancel()
		c.SetGameID(id)
	}

	return that.sendGame(ctx, c, actionGameGet, game)
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, payload *Payload) error {
	id := c.GameID()
	if id == "" {
		return that.sendErrorResponse(c, actionGameTurn, errNoGame)
	}

	if payload.Cell == nil {
		return that.sendErrorResponse(c, actionGameTurn, errCellRequired)
	}

	game, err := that.games.PlayerMove(ctx, id, *payload.Cell)
	if err != nil {
		return that.sendRejected(c, actionGameTurn, game, err)
	}

	return that.sendGame(ctx, c, actionGameTurn, game)
}

func (that *Server) handleRestart(ctx context.Context, c *client, _ *Payload) error {
	id := c.GameID()
	if id == "" {
		return that.sendErrorResponse(c, actionGameRestart, errNoGame)
	}

	c.Cancel()

	game, err := that.games.Restart(ctx, id)
	if err != nil {
		return that.sendErrorResponse(c, actionGameRestart, err)
	}

	return that.sendGame(ctx, c, actionGameRestart, game)
}

func (that *Server) handleSetMode(ctx context.Context, c *client, payload *Payload) error {
	id := c.GameID()
	if id == "" {
		return that.sendErrorResponse(c, actionGameMode, errNoGame)
	}

	mode, mark, err := parseModeAndMark(payload.Mode, payload.ComputerMark, "")
	if err != nil {
		return that.sendErrorResponse(c, actionGameMode, err)
	}

	// sendGame schedules the computer again if its move is still due.
	c.Cancel()

	game, err := that.games.SetMode(ctx, id, mode, mark)
	if err != nil {
		return that.sendErrorResponse(c, actionGameMode, err)
	}

	return that.sendGame(ctx, c, actionGameMode, game)
}

func (that *Server) handleResetScores(ctx context.Context, c *client, _ *Payload) error {
	id := c.GameID()
	if id == "" {
		return that.sendErrorResponse(c, actionScoresReset, errNoGame)
	}

	game, err := that.games.ResetScores(ctx, id)
	if err != nil {
		return that.sendErrorResponse(c, actionScoresReset, err)
	}

	return that.sendGame(ctx, c, actionScoresReset, game)
}

// sendGame pushes the game and, if the computer is to move, schedules its move.
func (that *Server) sendGame(ctx context.Context, c *client, action string, game *entity.Game) error {
	if err := c.Send(action, Payload{Game: game, Status: tictactoe.StatusText(*game)}); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	if tictactoe.IsComputerTurn(*game) {
		that.scheduleComputerMove(ctx, c, game.ID)
	}

	return nil
}

func (that *Server) scheduleComputerMove(ctx context.Context, c *client, id string) {
	log := that.logger.With("method", "scheduleComputerMove", "gameID", id)

	c.Schedule(that.computerDelay, func() {
		if ctx.Err() != nil {
			return
		}

		game, err := that.games.ComputerMove(ctx, id)
		if errors.Is(err, apperror.ErrNotComputerTurn) {
			log.Debug("computer move no longer due")
			return
		}

		if err != nil {
			log.Error("failed to make computer move", "error", err)
			_ = that.sendErrorResponse(c, actionGameComputer, err)

			return
		}

		if err = c.Send(actionGameComputer, Payload{Game: game, Status: tictactoe.StatusText(*game)}); err != nil {
			log.Debug("failed to push computer move", "error", err)
		}
	})
}

// sendRejected answers a refused move with the unchanged game so the client can resync.
func (that *Server) sendRejected(c *client, action string, game *entity.Game, err error) error {
	if game == nil || !errors.Is(err, apperror.ErrInvalidMove) {
		return that.sendErrorResponse(c, action, err)
	}

	payload := Payload{Game: game, Status: tictactoe.StatusText(*game), Error: err.Error()}
	if sendErr := c.Send(action, payload); sendErr != nil {
		return fmt.Errorf("failed to send error response: %w", sendErr)
	}

	return nil
}

func (that *Server) sendErrorResponse(c *client, action string, err error) error {
	msg := err.Error()
	if !isClientError(err) {
		that.logger.Error("action failed", "action", action, "error", err)
		msg = "Internal Server Error"
	}

	if sendErr := c.Send(action, Payload{Error: msg}); sendErr != nil {
		return fmt.Errorf("failed to send error response: %w", sendErr)
	}

	return nil
}

func isClientError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidMove) ||
		errors.Is(err, apperror.ErrNotComputerTurn) ||
		errors.Is(err, apperror.ErrGameNotFound) ||
		errors.Is(err, apperror.ErrUnknownMode) ||
		errors.Is(err, apperror.ErrUnknownMark) ||
		errors.Is(err, errNoGame) ||
		errors.Is(err, errCellRequired)
}

func parseModeAndMark(rawMode, rawMark string, fallback entity.Mode) (entity.Mode, entity.Mark, error) {
	mode, err := entity.ParseModeOr(rawMode, fallback)
	if err != nil {
		return "", entity.EmptyCell, err
	}

	if rawMark == "" {
		return mode, entity.EmptyCell, nil
	}

	mark, err := entity.ParseMark(rawMark)
	if err != nil {
		return "", entity.EmptyCell, err
	}

	return mode, mark, nil
}
