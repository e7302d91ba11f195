package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameUseCase interface {
	NewGame(ctx context.Context, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	PlayTurn(ctx context.Context, id string, cell int) (*entity.Game, error)
	ComputerMove(ctx context.Context, id string) (*entity.Game, error)
	Settle(ctx context.Context, id string) (*entity.Game, error)
	Restart(ctx context.Context, id string) (*entity.Game, error)
	SetMode(ctx context.Context, id string, mode entity.Mode, computerMark entity.Mark) (*entity.Game, error)
	ResetScores(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type createGameRequest struct {
	Mode         string `json:"mode"`
	ComputerMark string `json:"computer_mark"`
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type modeRequest struct {
	Mode         string `json:"mode"`
	ComputerMark string `json:"computer_mark"`
}

type gameResponse struct {
	Game   *entity.Game `json:"game"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
}

type GameHandler struct {
	logger *slog.Logger
	games  gameUseCase
}

func NewGameHandler(logger *slog.Logger, games gameUseCase) *GameHandler {
	return &GameHandler{
		logger: logger.With("component", "rest"),
		games:  games,
	}
}

// Create starts a game. If the computer opens, its first move is already applied.
func (that *GameHandler) Create(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mode, mark, err := parseModeAndMark(req.Mode, req.ComputerMark, entity.ModePvP)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	game, err := that.games.NewGame(ctx, mode, mark)
	if err != nil {
		that.fail(c, "Create", nil, err)
		return
	}

	game, err = that.games.Settle(ctx, game.ID)
	if err != nil {
		that.fail(c, "Create", nil, err)
		return
	}

	that.respond(c, http.StatusCreated, game)
}

func (that *GameHandler) Get(c *gin.Context) {
	game, err := that.games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "Get", nil, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

func (that *GameHandler) Delete(c *gin.Context) {
	if err := that.games.DeleteGame(c.Request.Context(), c.Param("id")); err != nil {
		that.fail(c, "Delete", nil, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Move applies the human move and, against the computer, the reply.
func (that *GameHandler) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Cell == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cell is required"})
		return
	}

	game, err := that.games.PlayTurn(c.Request.Context(), c.Param("id"), *req.Cell)
	if err != nil {
		that.fail(c, "Move", game, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

func (that *GameHandler) ComputerMove(c *gin.Context) {
	game, err := that.games.ComputerMove(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "ComputerMove", game, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

func (that *GameHandler) Restart(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err := that.games.Restart(ctx, id); err != nil {
		that.fail(c, "Restart", nil, err)
		return
	}

	game, err := that.games.Settle(ctx, id)
	if err != nil {
		that.fail(c, "Restart", nil, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

// SetMode requires a mode. Re-selecting pvc with a different computer_mark restarts the game.
func (that *GameHandler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mode, mark, err := parseModeAndMark(req.Mode, req.ComputerMark, "")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")

	if _, err = that.games.SetMode(ctx, id, mode, mark); err != nil {
		that.fail(c, "SetMode", nil, err)
		return
	}

	game, err := that.games.Settle(ctx, id)
	if err != nil {
		that.fail(c, "SetMode", nil, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

func (that *GameHandler) ResetScores(c *gin.Context) {
	game, err := that.games.ResetScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, "ResetScores", nil, err)
		return
	}

	that.respond(c, http.StatusOK, game)
}

func (that *GameHandler) respond(c *gin.Context, code int, game *entity.Game) {
	c.JSON(code, gameResponse{
		Game:   game,
		Status: tictactoe.StatusText(*game),
	})
}

// fail maps use case errors to HTTP codes. Rejected moves carry the unchanged game.
func (that *GameHandler) fail(c *gin.Context, method string, game *entity.Game, err error) {
	var code int

	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidMove):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrNotComputerTurn):
		code = http.StatusConflict
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	resp := gameResponse{Game: game, Error: err.Error()}
	if game != nil {
		resp.Status = tictactoe.StatusText(*game)
	}

	c.JSON(code, resp)
}

// parseModeAndMark reads a mode and an optional mark. An empty fallback makes the mode required.
func parseModeAndMark(rawMode, rawMark string, fallback entity.Mode) (entity.Mode, entity.Mark, error) {
	mode, err := entity.ParseModeOr(rawMode, fallback)
	if err != nil {
		return "", entity.EmptyCell, err
	}

	if rawMark == "" {
		return mode, entity.EmptyCell, nil
	}

	mark, err := entity.ParseMark(rawMark)
	if err != nil {
		return "", entity.EmptyCell, err
	}

	return mode, mark, nil
}
