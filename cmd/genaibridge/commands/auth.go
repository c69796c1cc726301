package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/florianilch/genaibridge/internal/app"
	"github.com/florianilch/genaibridge/internal/generator"
	"github.com/florianilch/genaibridge/internal/tokensource"
)

// authCommand returns the 'auth' subcommand for managing backend credentials.
func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage backend credentials",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Store the credential for the configured auth type",
				Action: authLoginAction,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored credential",
				Action: authLogoutAction,
			},
		},
	}
}

// authLoginAction asks for an API key, or runs the OAuth flow for claude-oauth,
// and writes the result to the configured store.
func authLoginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Storage == app.TokenStorageTypeEnv {
		return errors.New("cannot login with env storage (read-only). Configure file or keyring storage")
	}

	store, err := cfg.Auth.NewTokenStore(os.Environ)
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	var secret string
	switch cfg.Generator.AuthType {
	case generator.AuthTypeClaudeOAuth:
		secret, err = runAnthropicOAuth(ctx, out)
		if err != nil {
			return fmt.Errorf("oauth login failed: %w", err)
		}
	default:
		secret, err = readSecureInput(ctx, out, fmt.Sprintf("Enter API key for %s: ", cfg.Generator.AuthType))
		if err != nil {
			return err
		}
		secret = strings.TrimSpace(secret)
		if secret == "" {
			return errors.New("api key cannot be empty")
		}
	}

	if err := store.Write(ctx, secret); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "=== Login Successful ===")
	_, _ = fmt.Fprintf(out, "Credential saved to %s storage\n", cfg.Auth.Storage)

	return nil
}

// authLogoutAction clears the stored credential.
func authLogoutAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd, os.Environ)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Auth.Storage == app.TokenStorageTypeEnv {
		return errors.New("cannot logout with env storage (read-only). Configure file or keyring storage")
	}

	store, err := cfg.Auth.NewTokenStore(os.Environ)
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	// Clear token via empty string write to maintain storage abstraction
	if err := store.Write(ctx, ""); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "=== Logout Successful ===")
	_, _ = fmt.Fprintf(out, "Credential cleared from %s storage\n", cfg.Auth.Storage)

	return nil
}

// readSecureInput reads user input with hidden display and context cancellation support.
// Goroutine+select pattern required because term.ReadPassword has no native context support.
func readSecureInput(ctx context.Context, out io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)
	defer func() { _, _ = fmt.Fprintln(out) }()

	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		inputBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		resultCh <- result{value: string(inputBytes), err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.value, nil
	}
}

// runAnthropicOAuth performs OAuth login for Claude subscriptions and returns the
// refresh token.
func runAnthropicOAuth(ctx context.Context, out io.Writer) (string, error) {
	authorizer := tokensource.NewAuthorizer(
		tokensource.Endpoint,
		tokensource.RedirectURL,
	)

	verifier := oauth2.GenerateVerifier()
	authURL := authorizer.AuthCodeURL(verifier)

	_, _ = fmt.Fprintln(out, "=== Anthropic Claude OAuth Login ===")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "1. Visit this URL in your browser:\n   %s\n\n", authURL)
	_, _ = fmt.Fprintln(out, "2. Authorize the application")
	_, _ = fmt.Fprintln(out, "3. Paste the authorization code")

	code, err := readSecureInput(ctx, out, "\nEnter authorization code: ")
	if err != nil {
		return "", err
	}

	if code == "" {
		return "", errors.New("authorization code cannot be empty")
	}

	token, err := authorizer.Exchange(ctx, code, verifier)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return "", errors.New("token response contains no refresh token")
	}

	return token.RefreshToken, nil
}
