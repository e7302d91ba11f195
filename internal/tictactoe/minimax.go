package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const winScore = 10

// ChooseMove returns the best cell for computer under perfect play by both sides.
// Faster wins and slower losses score higher; ties go to the lowest index.
// It returns -1 when the board has no empty cell.
func ChooseMove(board entity.Board, computer entity.Mark) int {
	bestMove := -1
	bestScore := math.MinInt

	for _, cell := range board.EmptyCells() {
		child := board
		child[cell] = computer

		score := minimax(child, 1, computer.Opponent(), computer)
		if score > bestScore {
			bestScore = score
			bestMove = cell
		}
	}

	return bestMove
}

// minimax scores board from the computer's point of view with side to move next.
// board is a private copy, so children are built by value and nothing is restored.
func minimax(board entity.Board, depth int, side, computer entity.Mark) int {
	if score, terminal := evaluate(board, depth, computer); terminal {
		return score
	}

	maximizing := side == computer

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for cell, mark := range board {
		if mark != entity.EmptyCell {
			continue
		}

		child := board
		child[cell] = side

		score := minimax(child, depth+1, side.Opponent(), computer)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

func evaluate(board entity.Board, depth int, computer entity.Mark) (int, bool) {
	if winner, _, won := Winner(board); won {
		if winner == computer {
			return winScore - depth, true
		}

		return depth - winScore, true
	}

	if board.IsFull() {
		return 0, true
	}

	return 0, false
}
