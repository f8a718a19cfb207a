package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-winter/framework/config"
	"github.com/km-arc/go-winter/framework/container"
	"github.com/km-arc/go-winter/framework/providers"
	"github.com/km-arc/go-winter/framework/routing"
)

// Version of the framework.
const Version = "0.1.0"

// Application is a started container plus the HTTP surface built from it.
type Application struct {
	Container *container.Container
	Router    *routing.Router
	Metrics   *prometheus.Registry

	env    string
	logger *zap.Logger
}

// ── Options ──────────────────────────────────────────────────────────────────

type settings struct {
	env        string
	logger     *zap.Logger
	configOpts []config.Option
	providers  []container.ServiceProvider
	blueprints []*container.Blueprint
}

// Option configures New.
type Option func(*settings)

// WithConfig passes options through to config.Load.
//
//	app.New(app.WithConfig(config.WithEnvFile(".env"), config.WithYAMLFile("application.yml")))
func WithConfig(opts ...config.Option) Option {
	return func(s *settings) { s.configOpts = append(s.configOpts, opts...) }
}

// WithEnv overrides app.env.
func WithEnv(env string) Option {
	return func(s *settings) { s.env = env }
}

// WithLogger replaces the logger built from the environment.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithProviders appends application providers after the framework ones.
func WithProviders(ps ...container.ServiceProvider) Option {
	return func(s *settings) { s.providers = append(s.providers, ps...) }
}

// WithBlueprints registers extra blueprints.
func WithBlueprints(bps ...*container.Blueprint) Option {
	return func(s *settings) { s.blueprints = append(s.blueprints, bps...) }
}

// ── Bootstrap ────────────────────────────────────────────────────────────────

// NewLogger builds the zap logger for env: JSON in production, nothing in
// testing, console otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "testing":
		return zap.NewNop(), nil
	default:
		return zap.NewDevelopment()
	}
}

// New loads configuration, starts the container with the framework
// providers and exposes /metrics on the router.
//
//	a, err := app.New(
//	    app.WithConfig(config.WithEnvFile(".env"), config.WithYAMLFile("application.yml")),
//	    app.WithProviders(&hello.Provider{}),
//	)
//	if err != nil { ... }
//	err = a.Run(ctx)
func New(opts ...Option) (*Application, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}

	store, err := config.Load(s.configOpts...)
	if err != nil {
		return nil, err
	}
	env := s.env
	if env == "" {
		env, err = config.NewResolver(store).GetOrDefault("${app.env:${APP_ENV:development}}", "development")
		if err != nil {
			return nil, err
		}
	}
	logger := s.logger
	if logger == nil {
		if logger, err = NewLogger(env); err != nil {
			return nil, fmt.Errorf("app: logger: %w", err)
		}
	}
	resolver := config.NewResolver(store, config.WithLogger(logger.Named("config")))

	c, err := container.Start(resolver,
		container.WithLogger(logger),
		container.WithProviders(append(providers.Framework(), s.providers...)...),
		container.WithBlueprints(s.blueprints...),
	)
	if err != nil {
		return nil, err
	}

	a := &Application{Container: c, env: env, logger: logger}
	if a.Router, err = container.GetNamed[*routing.Router](c, "router"); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	if a.Metrics, err = container.GetNamed[*prometheus.Registry](c, "metricsRegistry"); err != nil {
		return nil, errors.Join(err, c.Close())
	}
	a.Router.Handle("/metrics", promhttp.HandlerFor(a.Metrics, promhttp.HandlerOpts{}))
	return a, nil
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Config returns the container's resolver.
func (a *Application) Config() *config.Resolver { return a.Container.Resolver() }
func (a *Application) Logger() *zap.Logger       { return a.logger }

func (a *Application) Environment() string { return a.env }
func (a *Application) IsLocal() bool       { return a.env == "local" || a.env == "development" }
func (a *Application) IsProduction() bool  { return a.env == "production" }
func (a *Application) IsTesting() bool     { return a.env == "testing" }

// Address is ${server.host:}:${server.port:8080}.
func (a *Application) Address() (string, error) {
	host, err := a.Config().GetOrDefault("server.host", "")
	if err != nil {
		return "", err
	}
	port, err := config.GetAsOrDefault[uint16](a.Config(), "server.port", 8080)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, fmt.Sprint(port)), nil
}

// ── Serve ────────────────────────────────────────────────────────────────────

// Run listens on Address and serves until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	addr, err := a.Address()
	if err != nil {
		return errors.Join(err, a.Close())
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Join(fmt.Errorf("app: listen %s: %w", addr, err), a.Close())
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts the server down within
// ${server.shutdown-timeout:10s} and closes the container.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	timeout, err := config.GetAsOrDefault(a.Config(), "server.shutdown-timeout", 10*time.Second)
	if err != nil {
		_ = ln.Close()
		return errors.Join(err, a.Close())
	}
	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()
	a.logger.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("env", a.env),
		zap.String("version", Version),
	)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Join(fmt.Errorf("app: serve: %w", err), a.Close())
		}
		return a.Close()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	a.logger.Info("server shutting down", zap.Duration("timeout", timeout))
	return errors.Join(srv.Shutdown(shutdownCtx), a.Close())
}

// Close destroys every bean. Safe to call more than once.
func (a *Application) Close() error { return a.Container.Close() }
