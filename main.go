package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-engine/internal"
	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// main - is the entry point of the application. It loads .env, parses the command line and runs the chosen command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env file: %v\n", err)
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "tictactoe",
		Usage: "tic-tac-toe against a friend or an unbeatable computer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the config file",
				Value:   "config.yml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server with the REST API and the websocket endpoint",
				Action: serve,
			},
			{
				Name:  "play",
				Usage: "play in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "pvp or pvc",
						Value: string(entity.ModeComputer),
					},
					&cli.StringFlag{
						Name:  "computer-mark",
						Usage: "X or O, the config value when empty",
					},
				},
				Action: play,
			},
			{
				Name:   "mcp",
				Usage:  "serve the game as MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	conf := initConfig(cmd.String("config"))
	logger := initLogger(conf, os.Stdout)

	return app.RunApp(ctx, logger, conf)
}

func play(ctx context.Context, cmd *cli.Command) error {
	conf := initConfig(cmd.String("config"))
	logger := initLogger(conf, os.Stderr)

	mode, err := entity.ParseModeOr(cmd.String("mode"), entity.ModePvP)
	if err != nil {
		return err
	}

	mark := entity.EmptyCell
	if raw := cmd.String("computer-mark"); raw != "" {
		if mark, err = entity.ParseMark(raw); err != nil {
			return err
		}
	}

	return app.RunConsole(ctx, logger, conf, mode, mark, os.Stdin, os.Stdout)
}

// serveMCP keeps stdout for the protocol, so logs go to stderr.
func serveMCP(ctx context.Context, cmd *cli.Command) error {
	conf := initConfig(cmd.String("config"))
	logger := initLogger(conf, os.Stderr)

	return app.RunMCP(ctx, logger, conf)
}

// initialize config.
func initConfig(path string) *config.Config {
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}

		path = filepath.Join(baseDir, path)
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config, out io.Writer) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}
