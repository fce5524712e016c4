package view

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-viewengine/pkg/di"
	"github.com/goliatone/go-viewengine/pkg/view/engine"
)

// ErrTemplateNotFound is returned when no registered engine has a template
// for the requested name.
var ErrTemplateNotFound = errors.New("view: template not found")

// EngineFactory builds an engine bound to v.
type EngineFactory func(v engine.View, options ...engine.Option) (engine.Engine, error)

// View renders templates through extension specific engines.
type View struct {
	files     fs.FS
	locator   di.ServiceLocator
	logger    *slog.Logger
	sanitizer *bluemonday.Policy

	mu        sync.RWMutex
	factories map[string]EngineFactory
	engines   map[string]engine.Engine
	vars      map[string]any
	content   string

	themeChoice *themeChoice
	themeOnce   sync.Once
	resolved    *resolvedTheme
	themeErr    error
}

// Ensure View satisfies the contract engines forward to.
var _ engine.View = (*View)(nil)

// New constructs a View using the provided options.
func New(options ...Option) *View {
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

	v := &View{
		files:     cfg.files,
		locator:   cfg.locator,
		logger:    cfg.logger,
		sanitizer: cfg.sanitizer,
		factories: make(map[string]EngineFactory, len(cfg.engines)),
		engines:   make(map[string]engine.Engine),
		vars:      make(map[string]any, len(cfg.vars)),

		themeChoice: cfg.theme,
	}
	for ext, factory := range cfg.engines {
		v.factories[ext] = factory
	}
	for key, value := range cfg.vars {
		v.vars[key] = value
	}
	return v
}

// RegisterEngine adds factory for templates ending in ext. Duplicate
// extensions return an error.
func (v *View) RegisterEngine(ext string, factory EngineFactory) error {
	key := normalizeExtension(ext)
	if key == "" {
		return fmt.Errorf("view: engine extension is required")
	}
	if factory == nil {
		return fmt.Errorf("view: engine factory for %q is required", key)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.factories[key]; exists {
		return fmt.Errorf("view: engine for %q already registered", key)
	}
	v.factories[key] = factory
	return nil
}

// Extensions returns the sorted registered template extensions.
func (v *View) Extensions() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	exts := make([]string, 0, len(v.factories))
	for ext := range v.factories {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Engine returns the engine for ext, building it on first use.
func (v *View) Engine(ext string) (engine.Engine, error) {
	key := normalizeExtension(ext)

	v.mu.RLock()
	if eng, ok := v.engines[key]; ok {
		v.mu.RUnlock()
		return eng, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if eng, ok := v.engines[key]; ok {
		return eng, nil
	}
	factory, ok := v.factories[key]
	if !ok {
		return nil, fmt.Errorf("view: no engine registered for %q", key)
	}

	options := []engine.Option{engine.WithLogger(v.logger)}
	if v.locator != nil {
		options = append(options, engine.WithServiceLocator(v.locator))
	}
	eng, err := factory(v, options...)
	if err != nil {
		return nil, fmt.Errorf("view: build engine for %q: %w", key, err)
	}

	v.engines[key] = eng
	v.logger.Debug("view: engine ready", slog.String("extension", key))
	return eng, nil
}

// Content returns the output of the last Render.
func (v *View) Content() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.content, nil
}

// SetContent replaces the cached output.
func (v *View) SetContent(content string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.content = content
}

// SetVar sets a variable passed to every render. Render params win over vars.
func (v *View) SetVar(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.vars[strings.TrimSpace(key)] = value
}

// Var returns a variable set through SetVar or WithVars.
func (v *View) Var(key string) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	value, ok := v.vars[key]
	return value, ok
}

// Render renders name and caches the output as the view content, so a layout
// rendered next can embed it through content().
func (v *View) Render(name string, params map[string]any) (string, error) {
	out, err := v.render(name, params)
	if err != nil {
		return "", err
	}
	v.SetContent(out)
	return out, nil
}

// Partial renders path without touching the cached content. Output is
// sanitized when a partial sanitizer is configured.
func (v *View) Partial(path string, params map[string]any) (string, error) {
	out, err := v.render(path, params)
	if err != nil {
		return "", err
	}
	if v.sanitizer != nil {
		out = v.sanitizer.Sanitize(out)
	}
	return out, nil
}

func (v *View) render(name string, params map[string]any) (string, error) {
	th, err := v.theme()
	if err != nil {
		return "", err
	}
	if themed, ok := th.template(strings.TrimSpace(name)); ok {
		v.logger.Debug("view: themed template", slog.String("template", name), slog.String("path", themed))
		name = themed
	}

	ext, path, err := v.resolveTemplate(name)
	if err != nil {
		return "", err
	}

	eng, err := v.Engine(ext)
	if err != nil {
		return "", err
	}

	v.logger.Debug("view: render", slog.String("template", path), slog.String("extension", ext))
	return eng.Render(path, v.mergeParams(params, th))
}

// resolveTemplate picks the engine extension for name. Names carrying a
// registered extension are used as is, otherwise each extension is tried in
// sorted order against the view filesystem.
func (v *View) resolveTemplate(name string) (string, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", "", fmt.Errorf("view: template name is required")
	}

	exts := v.Extensions()
	if len(exts) == 0 {
		return "", "", fmt.Errorf("view: no engines registered")
	}

	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(trimmed), ext) {
			return ext, trimmed, nil
		}
	}

	if v.files == nil {
		return exts[0], trimmed + exts[0], nil
	}
	for _, ext := range exts {
		candidate := trimmed + ext
		if _, err := fs.Stat(v.files, candidate); err == nil {
			return ext, candidate, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q", ErrTemplateNotFound, trimmed)
}

// mergeParams layers the theme, then view vars, then params.
func (v *View) mergeParams(params map[string]any, th *resolvedTheme) map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()

	merged := make(map[string]any, len(v.vars)+len(params)+1)
	if th != nil {
		merged[ThemeVar] = th.params()
	}
	for key, value := range v.vars {
		merged[key] = value
	}
	for key, value := range params {
		merged[key] = value
	}
	return merged
}
