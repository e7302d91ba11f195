package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/console"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/mcp"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

// RunApp - runs the HTTP server with the REST API and the websocket endpoint.
func RunApp(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	gameManager, closeStorage, err := newGameManager(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	router := rest.NewRouter(logger, gameManager)
	router.GET("/ws", gin.WrapH(websocket.New(logger, gameManager, conf.Game.ComputerDelay, conf.AllowedOrigins)))

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage)

	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

// RunConsole - plays one terminal session on in and out.
func RunConsole(
	ctx context.Context,
	logger *slog.Logger,
	conf *config.Config,
	mode entity.Mode,
	computerMark entity.Mark,
	in io.Reader,
	out io.Writer,
) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gameManager, closeStorage, err := newGameManager(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	return console.New(logger, gameManager, in, out, conf.Game.ComputerDelay).Run(ctx, mode, computerMark)
}

// RunMCP - serves the game tools over stdio.
func RunMCP(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	gameManager, closeStorage, err := newGameManager(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	logger.Info("Starting MCP stdio server", "storage", conf.Storage)

	return mcp.New(logger, gameManager).ServeStdio()
}

func newGameManager(ctx context.Context, logger *slog.Logger, conf *config.Config) (*usecase.GameManager, func(), error) {
	log := logger.With("component", "app")

	computerMark, err := entity.ParseMark(conf.Game.ComputerMark)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid computer mark in config: %w", err)
	}

	if conf.Storage != config.StorageRedis {
		return usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), computerMark), func() {}, nil
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.Game.SessionTTL)

	return usecase.NewGameManager(logger, gameRepo, computerMark), closeStorage, nil
}
