package apperror

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is the root of every rejected move. Rejected moves never change the game.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", ErrInvalidMove)
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrInvalidMove)
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", ErrInvalidMove)
	ErrNoTurn       = fmt.Errorf("%w: no player is to move", ErrInvalidMove)
)

var (
	ErrNotComputerTurn = errors.New("it's not the computer's turn")
	ErrGameNotFound    = errors.New("game not found")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrUnknownMark     = errors.New("unknown mark")
)
