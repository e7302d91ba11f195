package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

// Render writes the board with free cells numbered, the winning line bracketed, then status and scores.
func Render(w io.Writer, game *entity.Game) {
	winning := make(map[int]bool, 3)
	if game.IsWon() {
		for _, i := range game.Result.Line {
			winning[i] = true
		}
	}

	var b strings.Builder

	b.WriteString("\n")

	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := range cells {
			i := row*3 + col
			cells[col] = renderCell(game.Board.CellAt(i), i, winning[i])
		}

		b.WriteString(strings.Join(cells, "|"))
		b.WriteString("\n")

		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", tictactoe.StatusText(*game))
	fmt.Fprintf(&b, "Score  X: %d  O: %d\n", game.Scores.X, game.Scores.O)

	_, _ = io.WriteString(w, b.String())
}

func renderCell(mark entity.Mark, i int, highlight bool) string {
	if mark == entity.EmptyCell {
		return " " + strconv.Itoa(i) + " "
	}

	if highlight {
		return "[" + string(mark) + "]"
	}

	return " " + string(mark) + " "
}
