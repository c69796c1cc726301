package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/genaibridge/internal/app"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serves the legacy HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "listen address (host:port)",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "default model for requests that name none",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up observability before creating app
	shutdown, err := setupLogging(ctx, cmd, cfg, false)
	if err != nil {
		return err
	}
	defer flushLogs(ctx, shutdown)

	gen, err := app.NewGenerator(ctx, cfg, appVersion(cmd), os.Environ)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	application, err := app.New(cfg, gen)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	slog.InfoContext(ctx, "starting",
		"auth_type", string(cfg.Generator.AuthType),
		"model", gen.Model(),
	)

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("app failed to start: %w", err)
	}

	slog.InfoContext(ctx, "stopped gracefully")
	return nil
}
