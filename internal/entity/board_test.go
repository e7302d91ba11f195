package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_SetCell(t *testing.T) {
	t.Run("Sets an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: X is placed on the center
		err := board.SetCell(4, PlayerX)

		// Then: only the center changed
		require.NoError(t, err)
		assert.Equal(t, Board{4: PlayerX}, board)
	})

	t.Run("Error on occupied cell", func(t *testing.T) {
		// Given: a board with O on cell 2
		board := Board{2: PlayerO}

		// When: X is placed on the same cell
		err := board.SetCell(2, PlayerX)

		// Then: ErrCellOccupied is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Equal(t, Board{2: PlayerO}, board)
	})

	t.Run("Error on out of range index", func(t *testing.T) {
		board := Board{}

		for _, index := range []int{-1, 9, 42} {
			err := board.SetCell(index, PlayerX)
			require.ErrorIs(t, err, apperror.ErrInvalidCell)
		}

		assert.Equal(t, Board{}, board)
	})

	t.Run("Error on empty mark", func(t *testing.T) {
		board := Board{}

		err := board.SetCell(0, EmptyCell)

		require.ErrorIs(t, err, apperror.ErrUnknownMark)
	})
}

func TestBoard_Queries(t *testing.T) {
	board := Board{PlayerX, PlayerO, EmptyCell, EmptyCell, PlayerX, EmptyCell, EmptyCell, EmptyCell, PlayerO}

	assert.Equal(t, PlayerO, board.CellAt(1))
	assert.Equal(t, EmptyCell, board.CellAt(2))
	assert.Equal(t, EmptyCell, board.CellAt(-1))
	assert.Equal(t, EmptyCell, board.CellAt(9))
	assert.Equal(t, []int{2, 3, 5, 6, 7}, board.EmptyCells())
	assert.Equal(t, 2, board.Count(PlayerX))
	assert.Equal(t, 2, board.Count(PlayerO))
	assert.False(t, board.IsFull())

	full := Board{PlayerO, PlayerX, PlayerO, PlayerO, PlayerX, PlayerX, PlayerX, PlayerO, PlayerX}
	assert.True(t, full.IsFull())
	assert.Empty(t, full.EmptyCells())
}

func TestBoard_Clone(t *testing.T) {
	// Given: a board with one mark
	board := Board{0: PlayerX}

	// When: the clone is modified
	clone := board.Clone()
	require.NoError(t, clone.SetCell(1, PlayerO))

	// Then: the original is untouched
	assert.Equal(t, Board{0: PlayerX}, board)
	assert.Equal(t, Board{0: PlayerX, 1: PlayerO}, clone)
}

func TestLines(t *testing.T) {
	expected := [8]Line{
		{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
		{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
		{0, 4, 8}, {2, 4, 6},
	}

	assert.Equal(t, expected, Lines)
}

func TestParseMark(t *testing.T) {
	mark, err := ParseMark("o")
	require.NoError(t, err)
	assert.Equal(t, PlayerO, mark)
	assert.Equal(t, PlayerX, mark.Opponent())
	assert.Equal(t, EmptyCell, EmptyCell.Opponent())

	_, err = ParseMark("Z")
	require.ErrorIs(t, err, apperror.ErrUnknownMark)
}
