package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// ApplyMove places the current player's mark on cell. On error the returned game is the input unchanged.
func ApplyMove(game entity.Game, cell int) (entity.Game, error) {
	if err := validateMove(&game, cell); err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	next := game
	if err := next.Board.SetCell(cell, next.Turn); err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	updateGameStatus(&next)

	return next, nil
}

// validateMove - checks if the move is valid.
func validateMove(game *entity.Game, cell int) error {
	if !game.Active {
		return apperror.ErrGameFinished
	}

	if cell < 0 || cell >= entity.BoardSize {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Board[cell] != entity.EmptyCell {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if !game.Turn.IsPlayer() {
		return fmt.Errorf("%w: turn %q", apperror.ErrNoTurn, game.Turn)
	}

	return nil
}

// updateGameStatus - checks the game status after a move.
func updateGameStatus(game *entity.Game) {
	if winner, line, won := Winner(game.Board); won {
		game.Active = false
		game.Turn = entity.EmptyCell
		game.Result = entity.Result{Outcome: entity.OutcomeWin, Winner: winner, Line: line}
		game.Scores.Increment(winner)

		return
	}

	if game.Board.IsFull() {
		game.Active = false
		game.Turn = entity.EmptyCell
		game.Result = entity.Result{Outcome: entity.OutcomeDraw}

		return
	}

	game.Turn = game.Turn.Opponent()
}
