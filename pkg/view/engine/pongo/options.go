package pongo

import (
	"io/fs"
	"strings"

	"github.com/goliatone/go-viewengine/pkg/view/engine"
)

// Option configures an Engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	templateFn map[string]any
	globalData map[string]any
	adapter    []engine.Option
}

// WithBaseDir loads templates from dir on disk. It can be combined with
// WithFS; the directory is searched first.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension sets the extension appended to bare template names. A
// missing leading dot is added; blank values keep the ".tpl" default.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithTemplateFunc adds template functions. Values with the pongo2 filter
// signature become filters, other functions become globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		cfg.templateFn = mergeTrimmed(cfg.templateFn, funcs)
	}
}

// WithGlobalData adds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		cfg.globalData = mergeTrimmed(cfg.globalData, data)
	}
}

// WithAdapterOptions forwards options to the embedded engine.Adapter.
func WithAdapterOptions(options ...engine.Option) Option {
	return func(cfg *config) {
		cfg.adapter = append(cfg.adapter, options...)
	}
}

func mergeTrimmed(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		dst[strings.TrimSpace(key)] = value
	}
	return dst
}
