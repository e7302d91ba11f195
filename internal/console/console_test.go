package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

func play(t *testing.T, mode entity.Mode, computerMark entity.Mark, input string) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), entity.PlayerO)

	var out bytes.Buffer
	err := New(logger, games, strings.NewReader(input), &out, 0).Run(context.Background(), mode, computerMark)
	require.NoError(t, err)

	return out.String()
}

func TestConsole_Run(t *testing.T) {
	t.Run("Two players until X wins", func(t *testing.T) {
		// When: X takes the top row while O plays the middle row
		out := play(t, entity.ModePvP, entity.EmptyCell, "0\n3\n1\n4\n2\nq\n")

		// Then: X wins, the line is highlighted and the score is shown
		assert.Contains(t, out, "Player X Wins!")
		assert.Contains(t, out, "[X]|[X]|[X]")
		assert.Contains(t, out, "Score  X: 1  O: 0")
		assert.Contains(t, out, "Bye!")
	})

	t.Run("Computer answers a move", func(t *testing.T) {
		// When: the human plays the center against the computer
		out := play(t, entity.ModeComputer, entity.PlayerO, "4\nq\n")

		// Then: the computer thinks and then hands the turn back
		assert.Contains(t, out, "Computer is thinking...")
		assert.Equal(t, 2, strings.Count(out, "Player X's Turn"))
	})

	t.Run("Computer opens when it plays X", func(t *testing.T) {
		out := play(t, entity.ModeComputer, entity.PlayerX, "q\n")

		assert.Contains(t, out, " X | 1 | 2 ")
		assert.Contains(t, out, "Player O's Turn")
	})

	t.Run("Bad input is explained", func(t *testing.T) {
		// When: an out of range cell, an occupied cell, an unknown command and an empty line are typed
		out := play(t, entity.ModePvP, entity.EmptyCell, "9\n4\n4\nfoo\n\nm\nm online\n")

		// Then: each gets a message and the input end stops the game
		assert.Contains(t, out, "Pick a cell between 0 and 8.")
		assert.Contains(t, out, "That cell is taken.")
		assert.Contains(t, out, help)
		assert.Contains(t, out, errEmptyInput.Error())
		assert.Contains(t, out, errModeRequired.Error())
		assert.Contains(t, out, "unknown game mode")
		assert.NotContains(t, out, "Bye!")
	})

	t.Run("Restart, mode switch and score reset", func(t *testing.T) {
		// When: X wins, the scores are reset, the board is restarted and the mode switches
		out := play(t, entity.ModePvP, entity.EmptyCell, "0\n3\n1\n4\n2\n5\ns\nr\nm pvc\nq\n")

		// Then: moving after the end is refused and the rest goes through
		assert.Contains(t, out, "The game is over: r to play again.")
		assert.Contains(t, out, "Score  X: 0  O: 0")
		assert.Contains(t, out, " 0 | 1 | 2 ")
	})
}

func TestRender(t *testing.T) {
	// Given: a game O won on the diagonal
	game := &entity.Game{
		Board:  entity.Board{entity.PlayerO, entity.PlayerX, entity.PlayerX, entity.EmptyCell, entity.PlayerO, entity.EmptyCell, entity.PlayerX, entity.EmptyCell, entity.PlayerO},
		Mode:   entity.ModePvP,
		Result: entity.Result{Outcome: entity.OutcomeWin, Winner: entity.PlayerO, Line: entity.Line{0, 4, 8}},
		Scores: entity.ScoreBoard{O: 2},
	}

	// When: it is rendered
	var out bytes.Buffer
	Render(&out, game)

	// Then: the line is bracketed and free cells are numbered
	expected := "\n" +
		"[O]| X | X \n" +
		"---+---+---\n" +
		" 3 |[O]| 5 \n" +
		"---+---+---\n" +
		" X | 7 |[O]\n" +
		"\nPlayer O Wins!\n" +
		"Score  X: 0  O: 2\n"
	assert.Equal(t, expected, out.String())
}
