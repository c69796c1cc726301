package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/genaibridge/internal/app"
	"github.com/florianilch/genaibridge/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version, commit string) error {
	return newRootCommand(version, commit).Run(ctx, args)
}

func newRootCommand(version, commit string) *cli.Command {
	return &cli.Command{
		Name:    "genaibridge",
		Usage:   "Legacy content generation API on top of chat-completion backends",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				Sources: cli.EnvVars(app.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: "text",
			},
		},
		Metadata: map[string]any{metadataVersion: version},
		Commands: []*cli.Command{
			serveCommand(),
			generateCommand(),
			countTokensCommand(),
			authCommand(),
		},
	}
}

const metadataVersion = "version"

// appVersion returns the build version stored on the root command.
func appVersion(cmd *cli.Command) string {
	if v, ok := cmd.Root().Metadata[metadataVersion].(string); ok {
		return v
	}
	return "dev"
}

// loadConfig loads .env, then the layered configuration. Only flags the user set
// explicitly override file and environment values.
func loadConfig(cmd *cli.Command, environ func() []string) (*app.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
		"address":    "server.address",
		"model":      "generator.model",
	} {
		if cmd.IsSet(flag) {
			overrides[key] = cmd.String(flag)
		}
	}

	return app.LoadConfig(cmd.String("config"), environ, overrides)
}

// setupLogging installs the configured logger. Logs go to stderr for commands
// whose stdout carries results.
func setupLogging(ctx context.Context, cmd *cli.Command, cfg *app.Config, toStderr bool) (observability.ShutdownFunc, error) {
	obsCfg, err := cfg.ObservabilityConfig(appVersion(cmd))
	if err != nil {
		return nil, err
	}
	if toStderr {
		obsCfg.Writer = os.Stderr
	}

	shutdown, err := observability.Instrument(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}
	return shutdown, nil
}

// flushLogs runs shutdown on a fresh context; ctx may already be cancelled.
func flushLogs(ctx context.Context, shutdown observability.ShutdownFunc) {
	if err := shutdown(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
}
