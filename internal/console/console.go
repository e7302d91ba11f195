// Package console plays the game in a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const help = "Commands: 0-8 place a mark, r restart, m pvp|pvc switch mode, s reset scores, q quit"

type gameUseCase interface {
	NewGame(ctx context.Context, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	PlayerMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	ComputerMove(ctx context.Context, id string) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
	SetMode(ctx context.Context, id string, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	ResetScores(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type Console struct {
	logger *slog.Logger
	games  gameUseCase

	in  *bufio.Scanner
	out io.Writer

	// delay is shown as the computer "thinking" before it moves.
	delay time.Duration
}

func New(logger *slog.Logger, games gameUseCase, in io.Reader, out io.Writer, delay time.Duration) *Console {
	return &Console{
		logger: logger.With("component", "console"),
		games:  games,
		in:     bufio.NewScanner(in),
		out:    out,
		delay:  delay,
	}
}

// Run plays until the user quits, input ends or ctx is canceled.
func (that *Console) Run(ctx context.Context, mode entity.Mode, computerMark entity.Mark) error {
	game, err := that.games.NewGame(ctx, mode, computerMark)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	defer func() {
		if err := that.games.DeleteGame(context.WithoutCancel(ctx), game.ID); err != nil {
			that.logger.Debug("failed to delete game", "gameID", game.ID, "error", err)
		}
	}()

	that.println(help)
	Render(that.out, game)

	for {
		if tictactoe.IsComputerTurn(*game) {
			if game, err = that.computerTurn(ctx, game.ID); err != nil {
				return err
			}

			Render(that.out, game)

			continue
		}

		that.print("> ")

		if !that.in.Scan() {
			that.println("")
			return that.in.Err()
		}

		next, quit, err := that.execute(ctx, game, that.in.Text())
		if quit {
			that.println("Bye!")
			return nil
		}

		if err != nil {
			if !isUserError(err) {
				return err
			}

			that.println(userMessage(err))

			continue
		}

		game = next
		Render(that.out, game)
	}
}

func (that *Console) computerTurn(ctx context.Context, id string) (*entity.Game, error) {
	if that.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(that.delay):
		}
	}

	game, err := that.games.ComputerMove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to make computer move: %w", err)
	}

	return game, nil
}

// execute runs one input line. quit is true when the user asked to leave.
func (that *Console) execute(ctx context.Context, game *entity.Game, line string) (*entity.Game, bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return game, false, errEmptyInput
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return game, true, nil
	case "h", "help", "?":
		that.println(help)
		return game, false, nil
	case "r", "restart":
		next, err := that.games.Restart(ctx, game.ID)
		return next, false, err
	case "s", "scores":
		next, err := that.games.ResetScores(ctx, game.ID)
		return next, false, err
	case "m", "mode":
		if len(fields) < 2 {
			return game, false, errModeRequired
		}

		mode, err := entity.ParseMode(fields[1])
		if err != nil {
			return game, false, err
		}

		next, err := that.games.SetMode(ctx, game.ID, mode, game.ComputerMark)
		return next, false, err
	}

	cell, err := strconv.Atoi(fields[0])
	if err != nil {
		return game, false, errUnknownCommand
	}

	next, err := that.games.PlayerMove(ctx, game.ID, cell)

	return next, false, err
}

var (
	errEmptyInput     = errors.New("type a cell number or a command")
	errModeRequired   = errors.New("mode is required: m pvp or m pvc")
	errUnknownCommand = errors.New("unknown command")
)

func isUserError(err error) bool {
	return errors.Is(err, apperror.ErrInvalidMove) ||
		errors.Is(err, apperror.ErrUnknownMode) ||
		errors.Is(err, errEmptyInput) ||
		errors.Is(err, errModeRequired) ||
		errors.Is(err, errUnknownCommand)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell):
		return "Pick a cell between 0 and 8."
	case errors.Is(err, apperror.ErrCellOccupied):
		return "That cell is taken."
	case errors.Is(err, apperror.ErrGameFinished):
		return "The game is over: r to play again."
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "Wait for the computer."
	case errors.Is(err, errUnknownCommand):
		return help
	default:
		return err.Error()
	}
}

func (that *Console) print(s string) {
	_, _ = io.WriteString(that.out, s)
}

func (that *Console) println(s string) {
	_, _ = io.WriteString(that.out, s+"\n")
}
