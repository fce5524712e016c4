package pongo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-viewengine/pkg/view/engine"
)

// ErrFilterExists is returned by RegisterFilter for a name pongo2 already
// knows. Filters are process wide in pongo2.
var ErrFilterExists = errors.New("pongo: filter already registered")

// Engine is a pongo2 backed view engine. It embeds engine.Adapter, so
// attached methods and the getter shortcuts (getQuery, getSession, ...) are
// callable from templates by name, next to content(), partial() and call().
type Engine struct {
	*engine.Adapter

	templateSet *pongo2.TemplateSet
	cache       *templateCache
	ext         string

	mu      sync.RWMutex
	globals pongo2.Context
}

// Ensure Engine implements the engine contract.
var _ engine.Engine = (*Engine)(nil)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// New constructs an Engine bound to view using the provided options.
func New(view engine.View, options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("pongo: need to provide either base dir or fs.FS")
	}

	adapter, err := engine.New(view, cfg.adapter...)
	if err != nil {
		return nil, err
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	set := pongo2.NewSet("viewengine", loaders...)
	e := &Engine{
		Adapter:     adapter,
		templateSet: set,
		ext:         cfg.extension,
		globals:     pongo2.Context{},
	}
	e.cache = newTemplateCache(func(path string) (*pongo2.Template, error) {
		tmpl, err := set.FromFile(path)
		if err != nil {
			return nil, fmt.Errorf("pongo: load template %q: %w", path, err)
		}
		return tmpl, nil
	})
	registerDefaultFilters()

	if err := e.SetGlobals(cfg.globalData); err != nil {
		return nil, err
	}
	for name, fn := range cfg.templateFn {
		if err := e.addTemplateFunc(name, fn); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Factory returns a constructor suitable for view engine registration. The
// view supplies itself and the adapter options (service locator, logger).
func Factory(options ...Option) func(view engine.View, adapterOptions ...engine.Option) (engine.Engine, error) {
	return func(view engine.View, adapterOptions ...engine.Option) (engine.Engine, error) {
		opts := append([]Option{}, options...)
		opts = append(opts, WithAdapterOptions(adapterOptions...))
		return New(view, opts...)
	}
}

// Extension returns the template extension appended to bare names.
func (e *Engine) Extension() string {
	return e.ext
}

// Render renders the template at path with params.
func (e *Engine) Render(path string, params map[string]any) (string, error) {
	return e.RenderTemplate(path, params)
}

// RenderTemplate renders a named template, appending the engine extension
// when name lacks it. Output is also copied to every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	path := name
	if ext := e.Extension(); !strings.HasSuffix(path, ext) {
		path += ext
	}

	tmpl, err := e.cache.get(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, path, out)
}

// RenderString renders inline template source.
func (e *Engine) RenderString(source string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.templateSet.FromString(source)
	if err != nil {
		return "", fmt.Errorf("pongo: parse template string: %w", err)
	}
	return e.execute(tmpl, data, "<string>", out)
}

// RegisterFilter exposes fn as a pongo2 filter. Filter errors fail the render
// and keep fn's error in the chain.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("pongo: filter name is required")
	case fn == nil:
		return fmt.Errorf("pongo: filter %q has no function", name)
	case pongo2.FilterExists(name):
		return fmt.Errorf("%w: %q", ErrFilterExists, name)
	}

	sender := "filter:" + name
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: sender, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// SetGlobals merges data into the values every template sees. Render params
// and the adapter helpers take precedence over globals.
func (e *Engine) SetGlobals(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	converted, err := convertToContext(data)
	if err != nil {
		return fmt.Errorf("pongo: apply global data: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// copy on write: renders in flight keep the snapshot they started with
	next := make(pongo2.Context, len(e.globals)+len(converted))
	next.Update(e.globals)
	next.Update(converted)
	e.globals = next
	return nil
}

// addTemplateFunc installs fn as a pongo2 filter when it has the filter
// signature, otherwise as a global function.
func (e *Engine) addTemplateFunc(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(name) {
			return nil
		}
		if err := pongo2.RegisterFilter(name, filter); err != nil {
			return fmt.Errorf("pongo: register template func %q: %w", name, err)
		}
		return nil
	}
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("pongo: template func %q is %T, not a function", name, fn)
	}
	return e.SetGlobals(map[string]any{name: fn})
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, label string, out []io.Writer) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data: %w", err)
	}

	e.mu.RLock()
	globals := e.globals
	e.mu.RUnlock()

	execCtx := make(pongo2.Context, len(globals)+len(viewContext))
	execCtx.Update(globals)
	execCtx.Update(e.helpers())
	execCtx.Update(viewContext)

	e.Logger().Debug("pongo: render", slog.String("template", label))

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(execCtx, &buf); err != nil {
		return "", fmt.Errorf("pongo: execute %s: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// helpers exposes the adapter surface to templates. Names that are not valid
// pongo2 identifiers stay reachable through call().
func (e *Engine) helpers() pongo2.Context {
	ctx := pongo2.Context{
		"content": func() (*pongo2.Value, error) {
			content, err := e.Content()
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(content), nil
		},
		"partial": func(path string, params ...any) (*pongo2.Value, error) {
			rendered, err := e.Partial(path, partialParams(params))
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(rendered), nil
		},
		"call": func(name string, args ...any) (any, error) {
			return e.Call(name, args...)
		},
	}

	names := append(engine.AliasNames(), e.MethodNames()...)
	for _, name := range names {
		if !identifierPattern.MatchString(name) {
			continue
		}
		if _, reserved := ctx[name]; reserved {
			continue
		}
		method := name
		ctx[method] = func(args ...any) (any, error) {
			return e.Call(method, args...)
		}
	}
	return ctx
}

func partialParams(params []any) map[string]any {
	if len(params) == 0 || params[0] == nil {
		return nil
	}
	switch p := params[0].(type) {
	case map[string]any:
		return p
	case pongo2.Context:
		return map[string]any(p)
	}
	return nil
}
