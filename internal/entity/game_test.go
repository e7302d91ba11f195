package entity

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStatusMethods(t *testing.T) {
	t.Run("IsFinished returns true when game is not active", func(t *testing.T) {
		// Given: an inactive game
		game := &Game{Active: false}

		// Then: it is finished
		assert.True(t, game.IsFinished())
	})

	t.Run("IsWon and IsDraw follow the result", func(t *testing.T) {
		// Given: a won and a drawn game
		won := &Game{Result: Result{Outcome: OutcomeWin, Winner: PlayerO}}
		drawn := &Game{Result: Result{Outcome: OutcomeDraw}}

		// Then: the helpers report the outcome
		assert.True(t, won.IsWon())
		assert.False(t, won.IsDraw())
		assert.True(t, drawn.IsDraw())
		assert.False(t, drawn.IsWon())
	})

	t.Run("IsWithComputer returns true in computer mode", func(t *testing.T) {
		game := &Game{Mode: ModeComputer}

		assert.True(t, game.IsWithComputer())
	})
}

func TestScoreBoard(t *testing.T) {
	// Given: an empty score board
	var scores ScoreBoard

	// When: X wins twice and O once
	scores.Increment(PlayerX)
	scores.Increment(PlayerX)
	scores.Increment(PlayerO)
	scores.Increment(EmptyCell)

	// Then: the counters match
	assert.Equal(t, ScoreBoard{X: 2, O: 1}, scores)
	assert.Equal(t, 2, scores.Of(PlayerX))
	assert.Equal(t, 1, scores.Of(PlayerO))
}

func TestParseMode(t *testing.T) {
	for input, expected := range map[string]Mode{
		"pvp":      ModePvP,
		"PVC":      ModeComputer,
		"ai":       ModeComputer,
		"computer": ModeComputer,
	} {
		mode, err := ParseMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, mode, input)
	}

	_, err := ParseMode("online")
	require.ErrorIs(t, err, apperror.ErrUnknownMode)

	// An empty mode is rejected, not read as pvp
	_, err = ParseMode("")
	require.ErrorIs(t, err, apperror.ErrUnknownMode)
}

func TestParseModeOr(t *testing.T) {
	// When: the mode is missing and a fallback is given
	mode, err := ParseModeOr("", ModePvP)

	// Then: the fallback is used
	require.NoError(t, err)
	assert.Equal(t, ModePvP, mode)

	// When: the mode is given
	mode, err = ParseModeOr("pvc", ModePvP)

	// Then: it wins over the fallback
	require.NoError(t, err)
	assert.Equal(t, ModeComputer, mode)

	// When: the mode is missing and there is no fallback
	_, err = ParseModeOr("", "")

	// Then: it is required
	require.ErrorIs(t, err, apperror.ErrUnknownMode)
}
