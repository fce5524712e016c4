package view

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeVar is the render param holding the selected theme, when a theme
// selector is configured.
const ThemeVar = "theme"

type themeChoice struct {
	selector theme.ThemeSelector
	name     string
	variant  string
}

// resolvedTheme is a theme selection flattened with its variant overrides.
type resolvedTheme struct {
	name      string
	variant   string
	templates map[string]string
	tokens    map[string]string
	assets    map[string]string
}

func newResolvedTheme(sel *theme.Selection) *resolvedTheme {
	rt := &resolvedTheme{name: sel.Theme, variant: sel.Variant}
	manifest := sel.Manifest
	if manifest == nil {
		return rt
	}

	variant := manifest.Variants[sel.Variant]
	rt.templates = overlay(manifest.Templates, variant.Templates)
	rt.tokens = overlay(manifest.Tokens, variant.Tokens)

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := overlay(manifest.Assets.Files, variant.Assets.Files)
	if len(files) > 0 {
		rt.assets = make(map[string]string, len(files))
		for key, file := range files {
			rt.assets[key] = assetURL(prefix, file)
		}
	}
	return rt
}

// template maps a logical template name to the themed path, if the theme
// overrides it.
func (rt *resolvedTheme) template(name string) (string, bool) {
	if rt == nil {
		return "", false
	}
	path, ok := rt.templates[name]
	if !ok || strings.TrimSpace(path) == "" {
		return "", false
	}
	return path, true
}

// params is the value templates read through ThemeVar.
func (rt *resolvedTheme) params() map[string]any {
	return map[string]any{
		"name":    rt.name,
		"variant": rt.variant,
		"tokens":  rt.tokens,
		"assets":  rt.assets,
	}
}

// theme selects the configured theme on first use and caches the outcome.
func (v *View) theme() (*resolvedTheme, error) {
	if v.themeChoice == nil {
		return nil, nil
	}
	v.themeOnce.Do(func() {
		choice := v.themeChoice
		sel, err := choice.selector.Select(choice.name, choice.variant)
		if err != nil {
			v.themeErr = fmt.Errorf("view: select theme %q: %w", choice.name, err)
			return
		}
		if sel == nil {
			v.themeErr = fmt.Errorf("view: theme %q not found", choice.name)
			return
		}
		v.resolved = newResolvedTheme(sel)
	})
	return v.resolved, v.themeErr
}

func overlay(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}

func assetURL(prefix, file string) string {
	if prefix == "" || strings.Contains(file, "://") {
		return file
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
}
