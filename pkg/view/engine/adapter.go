package engine

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-viewengine/pkg/di"
)

// View is the host component an adapter forwards to. It owns cached output
// from previous render stages and knows how to render partials.
type View interface {
	Content() (string, error)
	Partial(path string, params map[string]any) (string, error)
}

// Engine is the contract every template engine adapter satisfies. Adapter
// provides everything except Render, which concrete engines implement.
type Engine interface {
	Content() (string, error)
	Partial(path string, params ...map[string]any) (string, error)
	View() View
	AddMethod(name string, fn any) (*Adapter, error)
	Call(name string, args ...any) (any, error)
	Render(path string, params map[string]any) (string, error)
}

// Option configures an Adapter before construction.
type Option func(*config)

type config struct {
	locator di.ServiceLocator
	logger  *slog.Logger
}

// WithServiceLocator records the locator used to resolve services during
// dynamic dispatch.
func WithServiceLocator(locator di.ServiceLocator) Option {
	return func(cfg *config) {
		cfg.locator = locator
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Adapter is the base type for template engine adapters. It forwards to the
// owning View, resolves named services and holds user attached methods.
// Concrete engines embed *Adapter and add Render.
type Adapter struct {
	di.Injectable

	view   View
	logger *slog.Logger

	mu      sync.RWMutex
	methods map[string]boundMethod
}

// New constructs an Adapter bound to view.
func New(view View, options ...Option) (*Adapter, error) {
	if view == nil {
		return nil, errors.New("engine: view is required")
	}

	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &Adapter{
		view:    view,
		logger:  cfg.logger,
		methods: make(map[string]boundMethod),
	}
	if cfg.locator != nil {
		a.SetServiceLocator(cfg.locator)
	}
	return a, nil
}

// Content returns cached output from another view stage.
func (a *Adapter) Content() (string, error) {
	return a.view.Content()
}

// Partial renders a partial inside another view. Only the first params map is
// used; when omitted a nil map is forwarded.
func (a *Adapter) Partial(path string, params ...map[string]any) (string, error) {
	var p map[string]any
	if len(params) > 0 {
		p = params[0]
	}
	return a.view.Partial(path, p)
}

// View returns the view component related to the adapter.
func (a *Adapter) View() View {
	return a.view
}

// MethodNames returns the sorted names of user attached methods.
func (a *Adapter) MethodNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.methods))
	for name := range a.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Logger exposes the adapter logger to embedding engines.
func (a *Adapter) Logger() *slog.Logger {
	return a.logger
}
