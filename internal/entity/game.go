package entity

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

type Mode string

const (
	ModePvP      Mode = "pvp"
	ModeComputer Mode = "pvc"
)

// ParseMode accepts the canonical names plus the aliases used by the web client.
// An empty string is not a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "pvp":
		return ModePvP, nil
	case "pvc", "ai", "computer":
		return ModeComputer, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownMode, s)
	}
}

// ParseModeOr is ParseMode with fallback for an empty s. An empty fallback makes the mode required.
func ParseModeOr(s string, fallback Mode) (Mode, error) {
	if s == "" && fallback != "" {
		return fallback, nil
	}

	return ParseMode(s)
}

type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
)

type Result struct {
	Outcome Outcome `json:"outcome,omitempty"`
	Winner  Mark    `json:"winner,omitempty"`
	Line    Line    `json:"line,omitempty"`
}

type ScoreBoard struct {
	X int `json:"x"`
	O int `json:"o"`
}

func (that *ScoreBoard) Increment(mark Mark) {
	switch mark {
	case PlayerX:
		that.X++
	case PlayerO:
		that.O++
	}
}

func (that *ScoreBoard) Of(mark Mark) int {
	switch mark {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return 0
	}
}

// Game is a plain value: copying it copies the whole state.
type Game struct {
	ID           string     `json:"id"`
	Board        Board      `json:"board"`
	Turn         Mark       `json:"player_turn"`
	Active       bool       `json:"active"`
	Mode         Mode       `json:"mode"`
	ComputerMark Mark       `json:"computer_mark,omitempty"`
	Result       Result     `json:"result"`
	Scores       ScoreBoard `json:"scores"`
}

func (that *Game) IsFinished() bool {
	return !that.Active
}

func (that *Game) IsWon() bool {
	return that.Result.Outcome == OutcomeWin
}

func (that *Game) IsDraw() bool {
	return that.Result.Outcome == OutcomeDraw
}

func (that *Game) IsWithComputer() bool {
	return that.Mode == ModeComputer
}
