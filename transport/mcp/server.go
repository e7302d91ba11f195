// Package mcp exposes the game as MCP tools so an agent can play over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	serverName    = "Tic-Tac-Toe"
	serverVersion = "1.0.0"
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
}

type Server struct {
	logger    *slog.Logger
	games     gameUseCase
	mcpServer *server.MCPServer
}

func New(logger *slog.Logger, games gameUseCase) *Server {
	that := &Server{
		logger: logger.With("component", "mcp"),
		games:  games,
		mcpServer: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(true),
			server.WithInstructions(`Tic-Tac-Toe on a 3x3 board.

Cells are numbered 0-8 row by row:
 0 | 1 | 2
 3 | 4 | 5
 6 | 7 | 8

X always moves first. In "pvc" mode the computer plays one mark with a perfect minimax search
and answers every move of yours immediately; in "pvp" mode you play both sides.
Start with new_game, then call player_move with the game_id it returns.`),
		),
	}

	that.registerTools()

	return that
}

func (that *Server) MCPServer() *server.MCPServer {
	return that.mcpServer
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (that *Server) ServeStdio() error {
	if err := server.ServeStdio(that.mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server failed: %w", err)
	}

	return nil
}

func (that *Server) registerTools() {
	gameID := map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by new_game",
	}
	mode := map[string]interface{}{
		"type":        "string",
		"description": `"pvp" (two humans) or "pvc" (against the computer)`,
		"enum":        []string{string(entity.ModePvP), string(entity.ModeComputer)},
	}
	computerMark := map[string]interface{}{
		"type":        "string",
		"description": `Mark the computer plays in pvc mode, "X" or "O" (default O)`,
		"enum":        []string{string(entity.PlayerX), string(entity.PlayerO)},
	}

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game. If the computer plays X it opens right away.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mode":          mode,
				"computer_mark": computerMark,
			},
		},
	}, that.handleNewGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Show the board, whose turn it is, the result and the scores",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameID},
			Required:   []string{"game_id"},
		},
	}, that.handleGameState)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "player_move",
		Description: "Place the current player's mark on a cell (0-8). Against the computer its reply is applied too.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameID,
				"cell": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index 0-8, row by row",
					"minimum":     0,
					"maximum":     entity.BoardSize - 1,
				},
			},
			Required: []string{"game_id", "cell"},
		},
	}, that.handlePlayerMove)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "computer_move",
		Description: "Let the computer play its turn when it is due",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameID},
			Required:   []string{"game_id"},
		},
	}, that.handleComputerMove)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Clear the board and start over. Mode and scores are kept.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameID},
			Required:   []string{"game_id"},
		},
	}, that.handleRestart)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "set_mode",
		Description: "Switch between pvp and pvc. Switching clears the board, as does a new computer_mark in pvc. Picking the current mode does nothing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id":       gameID,
				"mode":          mode,
				"computer_mark": computerMark,
			},
			Required: []string{"game_id", "mode"},
		},
	}, that.handleSetMode)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_scores",
		Description: "Set both win counters to zero. The board is left alone.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"game_id": gameID},
			Required:   []string{"game_id"},
		},
	}, that.handleResetScores)
}

func (that *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	mode, err := entity.ParseModeOr(stringArg(args, "mode"), entity.ModePvP)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mark := entity.EmptyCell
	if raw := stringArg(args, "computer_mark"); raw != "" {
		if mark, err = entity.ParseMark(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	game, err := that.games.NewGame(ctx, mode, mark)
	if err != nil {
		return that.toolError("new_game", err), nil
	}

	game, err = that.games.Settle(ctx, game.ID)
	if err != nil {
		return that.toolError("new_game", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	game, err := that.games.GetGame(ctx, stringArg(arguments(request), "game_id"))
	if err != nil {
		return that.toolError("game_state", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handlePlayerMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	cell, ok := intArg(args, "cell")
	if !ok {
		return mcp.NewToolResultError("cell must be an integer between 0 and 8"), nil
	}

	game, err := that.games.PlayTurn(ctx, stringArg(args, "game_id"), cell)
	if err != nil {
		return that.toolError("player_move", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handleComputerMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	game, err := that.games.ComputerMove(ctx, stringArg(arguments(request), "game_id"))
	if err != nil {
		return that.toolError("computer_move", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(arguments(request), "game_id")

	if _, err := that.games.Restart(ctx, id); err != nil {
		return that.toolError("restart_game", err), nil
	}

	game, err := that.games.Settle(ctx, id)
	if err != nil {
		return that.toolError("restart_game", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handleSetMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id := stringArg(args, "game_id")

	mode, err := entity.ParseMode(stringArg(args, "mode"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mark := entity.EmptyCell
	if raw := stringArg(args, "computer_mark"); raw != "" {
		if mark, err = entity.ParseMark(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	if _, err = that.games.SetMode(ctx, id, mode, mark); err != nil {
		return that.toolError("set_mode", err), nil
	}

	game, err := that.games.Settle(ctx, id)
	if err != nil {
		return that.toolError("set_mode", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

func (that *Server) handleResetScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	game, err := that.games.ResetScores(ctx, stringArg(arguments(request), "game_id"))
	if err != nil {
		return that.toolError("reset_scores", err), nil
	}

	return mcp.NewToolResultText(formatGame(game)), nil
}

// toolError turns domain errors into tool errors the agent can act on. Anything else is logged.
func (that *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperror.ErrInvalidMove) ||
		errors.Is(err, apperror.ErrNotComputerTurn) ||
		errors.Is(err, apperror.ErrGameNotFound) {
		return mcp.NewToolResultError(err.Error())
	}

	that.logger.Error("tool failed", "tool", tool, "error", err)

	return mcp.NewToolResultError("internal error")
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

// intArg accepts JSON numbers, which arrive as float64, as long as they are whole.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch value := args[key].(type) {
	case float64:
		if value != float64(int(value)) {
			return 0, false
		}

		return int(value), true
	case int:
		return value, true
	default:
		return 0, false
	}
}

func formatGame(game *entity.Game) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game: %s\nMode: %s", game.ID, game.Mode)
	if game.IsWithComputer() {
		fmt.Fprintf(&b, " (computer plays %s)", game.ComputerMark)
	}

	b.WriteString("\n\n")

	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := range cells {
			i := row*3 + col
			cells[col] = string(game.Board[i])
			if cells[col] == "" {
				cells[col] = fmt.Sprint(i)
			}
		}

		fmt.Fprintf(&b, " %s\n", strings.Join(cells, " | "))
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}

	fmt.Fprintf(&b, "\nStatus: %s\n", tictactoe.StatusText(*game))
	if game.IsWon() {
		fmt.Fprintf(&b, "Winning line: %v\n", game.Result.Line)
	}

	fmt.Fprintf(&b, "Scores: X %d, O %d\n", game.Scores.X, game.Scores.O)

	return b.String()
}
