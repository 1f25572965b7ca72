// Package shell wires the supervisor, health probe, tool proxy and command registry into
// the two lifecycle hooks a desktop host calls: Setup on launch and Exit on shutdown.
package shell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/hyperion/hypershell/pkg/commands"
	"github.com/hyperion/hypershell/pkg/config"
	"github.com/hyperion/hypershell/pkg/health"
	"github.com/hyperion/hypershell/pkg/metrics"
	"github.com/hyperion/hypershell/pkg/paths"
	"github.com/hyperion/hypershell/pkg/proxy"
	"github.com/hyperion/hypershell/pkg/supervisor"
)

// App owns every component the host needs for one application lifetime
type App struct {
	cfg     *config.Config
	mode    paths.Mode
	logger  *slog.Logger
	metrics metrics.Collector

	resolver   *paths.Resolver
	provider   paths.ResourceDirProvider
	supervisor *supervisor.Supervisor
	probe      *health.Probe
	client     *proxy.Client
	registry   *commands.Registry

	spawner  supervisor.Spawner
	stdout   io.Writer
	stderr   io.Writer
	baseURL  string
	waitOpts health.WaitOptions
}

// Option configures an App
type Option func(*App)

// WithLogger sets the logger shared by all components
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics sets the metrics collector shared by all components
func WithMetrics(mc metrics.Collector) Option {
	return func(a *App) {
		a.metrics = mc
	}
}

// WithSpawner overrides how the backend process is launched
func WithSpawner(spawner supervisor.Spawner) Option {
	return func(a *App) {
		a.spawner = spawner
	}
}

// WithResolver overrides path resolution
func WithResolver(resolver *paths.Resolver) Option {
	return func(a *App) {
		a.resolver = resolver
	}
}

// WithBackendOutput sets where the backend's stdout and stderr go
func WithBackendOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithWaitOptions overrides the readiness polling schedule
func WithWaitOptions(opts health.WaitOptions) Option {
	return func(a *App) {
		a.waitOpts = opts
	}
}

// New builds an App from configuration. No process is started until Setup.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		mode:     cfg.RunMode(),
		logger:   slog.Default(),
		metrics:  metrics.NewNoopCollector(),
		resolver: paths.NewResolver(),
		provider: cfg.ResourceDirProvider(),
		spawner:  supervisor.ExecSpawner{},
		waitOpts: health.DefaultWaitOptions(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.waitOpts.Logger = a.logger

	supOpts := []supervisor.Option{
		supervisor.WithSpawner(a.spawner),
		supervisor.WithLogger(a.logger),
		supervisor.WithMetrics(a.metrics),
		supervisor.WithGracePeriod(cfg.Supervisor.GracePeriod),
	}
	if a.stdout != nil && a.stderr != nil {
		supOpts = append(supOpts, supervisor.WithOutput(a.stdout, a.stderr))
	}
	a.supervisor = supervisor.New(supOpts...)

	a.baseURL = a.deriveBaseURL()
	a.probe = health.NewProbe(a.baseURL, health.WithLogger(a.logger), health.WithMetrics(a.metrics))
	a.client = proxy.NewClient(a.baseURL, proxy.WithLogger(a.logger), proxy.WithMetrics(a.metrics))

	a.registry = commands.NewRegistry()
	commands.Register(a.registry, commands.Deps{Proxy: a.client, Health: a.probe})

	return a, nil
}

// deriveBaseURL uses the configured port, else HTTP_PORT from the backend's env file, else 7095
func (a *App) deriveBaseURL() string {
	port := a.cfg.Backend.Port
	if port == 0 {
		port = paths.DefaultHTTPPort
		if configPath, err := a.resolver.ConfigPath(a.mode, a.provider); err == nil {
			env, err := paths.ReadBackendEnv(configPath)
			switch {
			case errors.Is(err, paths.ErrConfigMissing):
				// backend runs on its default port
			case err != nil:
				a.logger.Warn("cannot read backend env file", "config", configPath, "error", err)
			default:
				if p, err := env.HTTPPort(); err == nil {
					port = p
				} else {
					a.logger.Warn("ignoring backend HTTP_PORT", "config", configPath, "error", err)
				}
			}
		}
	}
	return "http://" + net.JoinHostPort(a.cfg.Backend.Host, strconv.Itoa(port))
}

// Setup runs on application launch. In packaged mode it starts the backend and waits for it
// to report healthy within backend.startup_timeout; any failure stops the backend and is fatal.
func (a *App) Setup(ctx context.Context) error {
	logger := a.logger.With("mode", a.mode.String(), "url", a.baseURL)

	if a.mode != paths.ModePackaged {
		logger.Info("development mode, expecting backend to be running already")
		return nil
	}

	resolved, err := a.resolver.Resolve(a.mode, a.provider)
	if err != nil {
		return err
	}

	if _, err := a.supervisor.Start(ctx, resolved); err != nil {
		return err
	}

	readyCtx, cancel := context.WithTimeout(ctx, a.cfg.Backend.StartupTimeout)
	defer cancel()

	if err := health.WaitReady(readyCtx, a.probe, a.waitOpts); err != nil {
		if stopErr := a.supervisor.Stop(context.Background()); stopErr != nil {
			logger.Error("failed to stop backend after startup failure", "error", stopErr)
		}
		return fmt.Errorf("backend startup: %w", err)
	}

	logger.Info("backend ready", "ui", a.client.ServerURL())
	return nil
}

// Exit runs on application shutdown and always stops the backend. Repeat calls are no-ops.
func (a *App) Exit(ctx context.Context) error {
	return a.supervisor.Stop(ctx)
}

// Invoke dispatches a named command with JSON arguments
func (a *App) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	return a.registry.Invoke(ctx, name, args)
}

// Mode returns the run mode
func (a *App) Mode() paths.Mode {
	return a.mode
}

// BaseURL returns the backend base URL
func (a *App) BaseURL() string {
	return a.baseURL
}

// Paths resolves the backend binary and config paths for the configured mode
func (a *App) Paths() (paths.ResolvedPaths, error) {
	return a.resolver.Resolve(a.mode, a.provider)
}

// Registry returns the command registry
func (a *App) Registry() *commands.Registry {
	return a.registry
}

// Supervisor returns the backend supervisor
func (a *App) Supervisor() *supervisor.Supervisor {
	return a.supervisor
}

// Probe returns the health probe
func (a *App) Probe() *health.Probe {
	return a.probe
}

// Client returns the tool proxy client
func (a *App) Client() *proxy.Client {
	return a.client
}
