package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/genaibridge/internal/app"
	"github.com/florianilch/genaibridge/internal/genai"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generates a response for the given prompts",
		ArgsUsage: "<prompt> [prompt...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "stream",
				Usage: "print fragments as they arrive",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "model to use instead of the configured default",
			},
			&cli.IntFlag{
				Name:  "max-tokens",
				Usage: "maximum number of generated tokens",
			},
			&cli.FloatFlag{
				Name:  "temperature",
				Usage: "sampling temperature",
			},
		},
		Action: generateAction,
	}
}

func countTokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "count-tokens",
		Usage:     "Prints the estimated token count of the given texts",
		ArgsUsage: "<text> [text...]",
		Action:    countTokensAction,
	}
}

// contentsFromArgs turns every argument into one text content item.
func contentsFromArgs(cmd *cli.Command) ([]genai.ContentItem, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, errors.New("at least one argument is required")
	}

	contents := make([]genai.ContentItem, 0, len(args))
	for _, arg := range args {
		contents = append(contents, genai.NewTextItem(arg))
	}
	return contents, nil
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	contents, err := contentsFromArgs(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shutdown, err := setupLogging(ctx, cmd, cfg, true)
	if err != nil {
		return err
	}
	defer flushLogs(ctx, shutdown)

	gen, err := app.NewGenerator(ctx, cfg, appVersion(cmd), os.Environ)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	req := &genai.GenerateContentRequest{Contents: contents}
	if cmd.IsSet("max-tokens") {
		maxTokens := int(cmd.Int("max-tokens"))
		req.MaxTokens = &maxTokens
	}
	if cmd.IsSet("temperature") {
		temperature := cmd.Float("temperature")
		req.Temperature = &temperature
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	if !cmd.Bool("stream") {
		resp, err := gen.GenerateContent(ctx, req, "")
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		_, err = fmt.Fprintln(out, resp.Text)
		return err
	}

	stream, err := gen.GenerateContentStream(ctx, req, "")
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	for fragment, err := range stream {
		if err != nil {
			return fmt.Errorf("stream failed: %w", err)
		}
		if _, err := io.WriteString(out, fragment.Text); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out)
	return err
}

// countTokensAction counts locally with the configured estimator; no backend
// credential is needed.
func countTokensAction(_ context.Context, cmd *cli.Command) error {
	contents, err := contentsFromArgs(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	estimator, err := cfg.Tokens.NewEstimator()
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, estimator.EstimateTokens(genai.JoinContents(contents)))
	return err
}
