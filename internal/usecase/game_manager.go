package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager runs game sessions stored in a repository. Mutations of one game are serialized,
// so a turn is fully applied and stored before the next one is looked at.
type GameManager struct {
	logger       *slog.Logger
	gameRepo     gameRepo
	computerMark entity.Mark

	locks *keyedMutex
}

// NewGameManager - computerMark is the mark the computer takes when a caller does not pick one.
func NewGameManager(logger *slog.Logger, gameRepo gameRepo, computerMark entity.Mark) *GameManager {
	if !computerMark.IsPlayer() {
		computerMark = entity.PlayerO
	}

	return &GameManager{
		logger:       logger.With("component", "game_manager"),
		gameRepo:     gameRepo,
		computerMark: computerMark,
		locks:        newKeyedMutex(),
	}
}

func (that *GameManager) NewGame(ctx context.Context, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error) {
	game := tictactoe.NewGame(uuid.NewString(), mode, that.markOrDefault(computerMark))

	if err := that.updateGame(ctx, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID, "mode", game.Mode, "computer", game.ComputerMark)

	return &game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return that.getGameByID(ctx, id)
}

// PlayerMove applies a human move. A rejected move returns the unchanged game with the error.
func (that *GameManager) PlayerMove(ctx context.Context, id string, cell int) (*entity.Game, error) {
	return that.update(ctx, id, "PlayerMove", func(game entity.Game) (entity.Game, error) {
		return tictactoe.PlayerMove(game, cell)
	})
}

func (that *GameManager) ComputerMove(ctx context.Context, id string) (*entity.Game, error) {
	return that.update(ctx, id, "ComputerMove", tictactoe.ComputerMove)
}

// PlayTurn applies a human move and, against the computer, the computer's reply in the same step.
func (that *GameManager) PlayTurn(ctx context.Context, id string, cell int) (*entity.Game, error) {
	return that.update(ctx, id, "PlayTurn", func(game entity.Game) (entity.Game, error) {
		next, err := tictactoe.PlayerMove(game, cell)
		if err != nil {
			return game, err
		}

		return replyIfDue(next)
	})
}

// Settle plays the computer's turn if one is due and does nothing otherwise.
func (that *GameManager) Settle(ctx context.Context, id string) (*entity.Game, error) {
	return that.update(ctx, id, "Settle", replyIfDue)
}

func (that *GameManager) Restart(ctx context.Context, id string) (*entity.Game, error) {
	return that.update(ctx, id, "Restart", func(game entity.Game) (entity.Game, error) {
		return tictactoe.Restart(game), nil
	})
}

// SetMode switches the game to mode. Without a computer mark a computer game keeps its current one.
func (that *GameManager) SetMode(ctx context.Context, id string, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error) {
	return that.update(ctx, id, "SetMode", func(game entity.Game) (entity.Game, error) {
		if !computerMark.IsPlayer() && game.ComputerMark.IsPlayer() {
			computerMark = game.ComputerMark
		}

		return tictactoe.SetMode(game, mode, that.markOrDefault(computerMark)), nil
	})
}

func (that *GameManager) ResetScores(ctx context.Context, id string) (*entity.Game, error) {
	return that.update(ctx, id, "ResetScores", func(game entity.Game) (entity.Game, error) {
		return tictactoe.ResetScores(game), nil
	})
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.locks.Lock(id)
	defer unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

func (that *GameManager) update(
	ctx context.Context,
	id, method string,
	apply func(entity.Game) (entity.Game, error),
) (*entity.Game, error) {
	log := that.logger.With("method", method, "gameID", id)

	unlock := that.locks.Lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := apply(*game)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidMove) || errors.Is(err, apperror.ErrNotComputerTurn) {
			log.Debug("action rejected", "error", err)
		} else {
			log.Error("action failed", "error", err)
		}

		return game, err
	}

	if err = that.updateGame(ctx, &next); err != nil {
		return nil, err
	}

	if game.Active && !next.Active {
		log.Info("game finished", "outcome", next.Result.Outcome, "winner", next.Result.Winner, "scores", next.Scores)
	}

	return &next, nil
}

func (that *GameManager) markOrDefault(mark entity.Mark) entity.Mark {
	if mark.IsPlayer() {
		return mark
	}

	return that.computerMark
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func replyIfDue(game entity.Game) (entity.Game, error) {
	if !tictactoe.IsComputerTurn(game) {
		return game, nil
	}

	return tictactoe.ComputerMove(game)
}
