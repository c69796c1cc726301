package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/florianilch/genaibridge/internal/credentials"
	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/generator"
	"github.com/florianilch/genaibridge/internal/proxy"
)

// App orchestrates the lifecycle of the proxy server and related services.
type App struct {
	cfg    *Config
	health *Health
	proxy  *proxy.Proxy
}

// New creates an App serving gen.
func New(cfg *Config, gen genai.ContentGenerator) (*App, error) {
	health := NewHealth()

	var models []proxy.Model
	if m, ok := gen.(interface{ Model() string }); ok && m.Model() != "" {
		models = append(models, proxy.NewModel(m.Model()))
	}

	proxyServer, err := proxy.New(gen, health,
		proxy.WithModels(models...),
		proxy.WithMaxRequestBytes(cfg.Server.MaxRequestBytes),
		proxy.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	return &App{
		cfg:    cfg,
		health: health,
		proxy:  proxyServer,
	}, nil
}

// NewGenerator reads the backend credential from the configured store and builds
// the generator. A missing credential surfaces as generator.ErrMissingAPIKey or
// generator.ErrMissingRefreshToken.
func NewGenerator(ctx context.Context, cfg *Config, version string, environ func() []string) (*genai.ChatGenerator, error) {
	store, err := cfg.Auth.NewTokenStore(environ)
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	secret, err := store.Read(ctx)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	estimator, err := cfg.Tokens.NewEstimator()
	if err != nil {
		return nil, fmt.Errorf("failed to create token estimator: %w", err)
	}

	genCfg := generator.Config{
		AuthType: cfg.Generator.AuthType,
		Model:    cfg.Generator.Model,
		BaseURL:  cfg.Generator.BaseURL,
		Proxy:    cfg.Generator.Proxy,
	}
	if cfg.Generator.AuthType == generator.AuthTypeClaudeOAuth {
		genCfg.RefreshToken = secret
	} else {
		genCfg.APIKey = secret
	}

	return generator.New(genCfg, generator.Session{Version: version}, generator.WithTokenEstimator(estimator))
}

// Start starts all services and blocks until shutdown is triggered.
// Uses errgroup for runtime error monitoring and shutdown function collection for coordinated cleanup.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	var shutdownFuncs []func(context.Context) error

	// Startup phase: Start services
	slog.InfoContext(gCtx, "starting proxy server")
	proxyErrCh, err := a.proxy.Start(gCtx, a.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("proxy startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.proxy.Shutdown)

	a.health.SetReady(true)

	// Monitor runtime errors - errgroup cancels context on first error
	g.Go(func() error {
		select {
		case err, ok := <-proxyErrCh:
			if ok && err != nil {
				slog.ErrorContext(gCtx, "proxy runtime error", "error", err)
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	runtimeErr := g.Wait()

	// Fail readiness first so load balancers stop routing before connections drain
	a.health.SetReady(false)
	slog.InfoContext(gCtx, "shutting down services")

	// Shutdown phase: Stop all services
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.InfoContext(shutdownCtx, "application stopped")
	return nil
}

// Handler exposes the HTTP handler, e.g. for in-process tests.
func (a *App) Handler() *proxy.Proxy {
	return a.proxy
}

// Health returns the readiness state shared with the health endpoints.
func (a *App) Health() *Health {
	return a.health
}
