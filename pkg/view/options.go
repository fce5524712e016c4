package view

import (
	"io/fs"
	"log/slog"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-viewengine/pkg/di"
)

// Option configures a View before construction.
type Option func(*config)

type config struct {
	files     fs.FS
	locator   di.ServiceLocator
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
	engines   map[string]EngineFactory
	vars      map[string]any
	theme     *themeChoice
}

// WithThemeSelector selects name and variant through selector before the
// first render. Template names listed in the theme manifest (or its variant)
// render the themed path instead, and templates receive the theme tokens and
// asset URLs under ThemeVar.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		if selector == nil {
			return
		}
		cfg.theme = &themeChoice{
			selector: selector,
			name:     strings.TrimSpace(name),
			variant:  strings.TrimSpace(variant),
		}
	}
}

// WithFS sets the filesystem used to locate templates by name.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithServiceLocator sets the locator handed to every engine the view builds.
func WithServiceLocator(locator di.ServiceLocator) Option {
	return func(cfg *config) {
		cfg.locator = locator
	}
}

// WithLogger sets the logger used by the view and its engines.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithPartialSanitizer filters partial output through policy.
func WithPartialSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.sanitizer = policy
	}
}

// WithEngine registers factory for templates ending in ext.
func WithEngine(ext string, factory EngineFactory) Option {
	return func(cfg *config) {
		key := normalizeExtension(ext)
		if key == "" || factory == nil {
			return
		}
		if cfg.engines == nil {
			cfg.engines = make(map[string]EngineFactory)
		}
		cfg.engines[key] = factory
	}
}

// WithVars seeds variables passed to every render.
func WithVars(vars map[string]any) Option {
	return func(cfg *config) {
		if len(vars) == 0 {
			return
		}
		if cfg.vars == nil {
			cfg.vars = make(map[string]any, len(vars))
		}
		for key, value := range vars {
			cfg.vars[strings.TrimSpace(key)] = value
		}
	}
}

func normalizeExtension(ext string) string {
	trimmed := strings.ToLower(strings.TrimSpace(ext))
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	return trimmed
}
