package tictactoe

import "github.com/rocketscienceinc/tictactoe-engine/internal/entity"

// Winner returns the mark on the first completed line in entity.Lines order.
func Winner(board entity.Board) (entity.Mark, entity.Line, bool) {
	for _, line := range entity.Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a, line, true
		}
	}

	return entity.EmptyCell, entity.Line{}, false
}

func IsDraw(board entity.Board) bool {
	if _, _, won := Winner(board); won {
		return false
	}

	return board.IsFull()
}

func IsTerminal(board entity.Board) bool {
	if _, _, won := Winner(board); won {
		return true
	}

	return board.IsFull()
}
