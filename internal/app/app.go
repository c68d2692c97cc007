package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector/salesforce"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/hcl"
	"github.com/specialistvlad/soqlgrid/internal/registry"
	"github.com/specialistvlad/soqlgrid/internal/render"
	"github.com/specialistvlad/soqlgrid/internal/script"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	loader    config.Loader
	dialer    registry.Dialer
	stamper   func(ctx context.Context, m *config.Model) (int, error)
	evaluator script.Evaluator
	registry  *registry.Registry

	mu    sync.Mutex
	model *config.Model
}

// Option customizes an App.
type Option func(*App)

// WithLoader replaces the HCL loader.
func WithLoader(l config.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithDialer replaces the Salesforce dialer.
func WithDialer(d registry.Dialer) Option {
	return func(a *App) { a.dialer = d }
}

// WithEvaluator replaces the HCL script evaluator.
func WithEvaluator(ev script.Evaluator) Option {
	return func(a *App) { a.evaluator = ev }
}

// NewApp builds the logger, loads env files and connection files, and
// prepares an empty session registry. Results go to outW, logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	a := &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		loader:    hcl.NewLoader(),
		dialer:    salesforce.Dialer{},
		stamper:   hcl.StampIDs,
		evaluator: script.NewHCL(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.registry = registry.New(a.dialer)

	ctx := a.context(context.Background())
	logger.Debug("Logger configured successfully.")

	if err := loadEnvFiles(ctx, cfg.EnvFiles); err != nil {
		return nil, err
	}
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// context attaches the app logger to ctx.
func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Reload reads the connection files again.
func (a *App) Reload(ctx context.Context) error {
	model, err := a.loader.Load(ctx, a.config.ConfigPaths...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(model.Connections) == 0 {
		return fmt.Errorf("failed to load configuration: no connections found in %s", strings.Join(a.config.ConfigPaths, ", "))
	}
	a.mu.Lock()
	a.model = model
	a.mu.Unlock()
	a.logger.Debug("Configuration loaded.", "connections", len(model.Connections))
	return nil
}

// Model returns the currently loaded model.
func (a *App) Model() *config.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.model
}

// connection finds a connection by UUID or display name.
func (a *App) connection(ref string) (*config.Connection, error) {
	conn, ok := a.Model().Connection(ref)
	if !ok {
		return nil, fmt.Errorf("unknown connection %q", ref)
	}
	return conn, nil
}

func (a *App) format() render.Format {
	return render.Format(a.config.Output)
}

// Close logs out every open session.
func (a *App) Close(ctx context.Context) error {
	return a.registry.Close(a.context(ctx))
}
