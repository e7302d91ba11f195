package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// NewGame starts a game with X to move. computerMark only matters in computer mode.
func NewGame(id string, mode entity.Mode, computerMark entity.Mark) entity.Game {
	game := entity.Game{
		ID:     id,
		Turn:   entity.PlayerX,
		Active: true,
		Mode:   mode,
	}

	if mode == entity.ModeComputer {
		game.ComputerMark = computerMark
	}

	return game
}

// PlayerMove applies a human move.
func PlayerMove(game entity.Game, cell int) (entity.Game, error) {
	if game.Active && IsComputerTurn(game) {
		return game, apperror.ErrNotYourTurn
	}

	return ApplyMove(game, cell)
}

func IsComputerTurn(game entity.Game) bool {
	return game.Mode == entity.ModeComputer && game.Active && game.Turn == game.ComputerMark
}

// ComputerMove lets the search agent play the computer's turn.
func ComputerMove(game entity.Game) (entity.Game, error) {
	if !IsComputerTurn(game) {
		return game, apperror.ErrNotComputerTurn
	}

	cell := ChooseMove(game.Board, game.ComputerMark)

	next, err := ApplyMove(game, cell)
	if err != nil {
		return game, fmt.Errorf("computer failed to make turn: %w", err)
	}

	return next, nil
}

// Restart clears the board and keeps the mode and the scores.
func Restart(game entity.Game) entity.Game {
	next := NewGame(game.ID, game.Mode, game.ComputerMark)
	next.Scores = game.Scores

	return next
}

// SetMode restarts the game in mode. Selecting the current mode with the same
// computer mark changes nothing; a different computer mark restarts the game.
func SetMode(game entity.Game, mode entity.Mode, computerMark entity.Mark) entity.Game {
	if game.Mode == mode && (mode != entity.ModeComputer || game.ComputerMark == computerMark) {
		return game
	}

	next := NewGame(game.ID, mode, computerMark)
	next.Scores = game.Scores

	return next
}

// ResetScores zeroes both counters and leaves the board alone.
func ResetScores(game entity.Game) entity.Game {
	game.Scores = entity.ScoreBoard{}

	return game
}
