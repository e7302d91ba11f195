package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// StatusText is the one-line status shown to players.
func StatusText(game entity.Game) string {
	switch {
	case game.IsWon():
		if game.IsWithComputer() && game.Result.Winner == game.ComputerMark {
			return "Computer Wins!"
		}

		return fmt.Sprintf("Player %s Wins!", game.Result.Winner)
	case game.IsDraw():
		return "It's a Draw!"
	case IsComputerTurn(game):
		return "Computer is thinking..."
	default:
		return fmt.Sprintf("Player %s's Turn", game.Turn)
	}
}
