package main

import (
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-viewengine/internal/config"
)

// manifestSelector serves the single theme declared in the CLI config.
type manifestSelector struct {
	manifest *theme.Manifest
}

var _ theme.ThemeSelector = (*manifestSelector)(nil)

func newManifestSelector(cfg config.Theme) *manifestSelector {
	manifest := &theme.Manifest{
		Name:      cfg.Name,
		Tokens:    cfg.Tokens,
		Templates: cfg.Templates,
		Assets:    theme.Assets{Prefix: cfg.Assets.Prefix, Files: cfg.Assets.Files},
	}
	if len(cfg.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(cfg.Variants))
		for name, variant := range cfg.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return &manifestSelector{manifest: manifest}
}

func (s *manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != s.manifest.Name {
		return nil, fmt.Errorf("theme %q is not configured", name)
	}
	if _, ok := s.manifest.Variants[variant]; variant != "" && !ok {
		return nil, fmt.Errorf("theme %q has no variant %q", name, variant)
	}
	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: s.manifest,
	}, nil
}
