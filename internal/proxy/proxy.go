package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/observability/middleware"
)

// DefaultMaxRequestBytes limits request bodies when no other limit is configured.
const DefaultMaxRequestBytes int64 = 10 << 20

// ReadinessChecker reports whether the application can serve traffic.
type ReadinessChecker interface {
	IsReady() bool
}

// Proxy serves the legacy content generation API on top of a genai.ContentGenerator.
type Proxy struct {
	generator       genai.ContentGenerator
	health          ReadinessChecker
	models          []Model
	maxRequestBytes int64
	logger          *slog.Logger

	handler http.Handler
	server  *http.Server
}

// Compile-time check to ensure Proxy implements http.Handler
var _ http.Handler = (*Proxy)(nil)

// Option configures a Proxy.
type Option func(*Proxy)

// WithModels sets the models listed by GET /v1beta/models.
func WithModels(models ...Model) Option {
	return func(p *Proxy) {
		p.models = models
	}
}

// WithMaxRequestBytes overrides DefaultMaxRequestBytes. Non-positive values are ignored.
func WithMaxRequestBytes(n int64) Option {
	return func(p *Proxy) {
		if n > 0 {
			p.maxRequestBytes = n
		}
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Proxy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a proxy serving gen. health drives the readiness endpoint.
func New(gen genai.ContentGenerator, health ReadinessChecker, opts ...Option) (*Proxy, error) {
	if gen == nil {
		return nil, errors.New("content generator cannot be nil")
	}
	if health == nil {
		return nil, errors.New("readiness checker cannot be nil")
	}

	p := &Proxy{
		generator:       gen,
		health:          health,
		maxRequestBytes: DefaultMaxRequestBytes,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.handler = p.routes()
	return p, nil
}

func (p *Proxy) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/liveness", livenessHandler())
	mux.HandleFunc("GET /health/readiness", readinessHandler(p.health))

	for _, prefix := range []string{"/v1beta", "/v1"} {
		mux.HandleFunc("GET "+prefix+"/models", p.listModels)
		mux.HandleFunc("GET "+prefix+"/models/{model}", p.getModel)
		mux.HandleFunc("POST "+prefix+"/models/{modelAction}", p.modelAction)
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(r.Context(), w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	})

	return applyMiddlewares(mux,
		Recovery,
		RequestSizeLimit(p.maxRequestBytes),
		middleware.Logging(p.logger),
		middleware.RequestIDGeneration,
		middleware.RequestIDPropagation,
		middleware.TraceContextExtraction,
	)
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Start listens on addr and serves in the background. Listen failures are returned
// directly; later serve failures arrive on the returned channel, which is closed
// when the server stops.
func (p *Proxy) Start(ctx context.Context, addr string) (<-chan error, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	p.server = &http.Server{
		Handler:           p,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams may run for minutes; no write timeout
		IdleTimeout: 120 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	slog.InfoContext(ctx, "proxy listening", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return errCh, nil
}

// Shutdown gracefully stops a started server.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
