package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewengine/internal/config"
)

const sampleYAML = `
templates:
  dir: ./views
layout: layouts/main
params:
  title: Hello
session:
  user: ada
route:
  id: "42"
request:
  method: post
  url: /articles?page=2
  form:
    title: Draft
prompts:
  - name: author
    default: Ada
`

func TestParse_YAML(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML), "sample.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := config.Config{
		Templates: config.Templates{Dir: "./views", Extension: ".tpl"},
		Layout:    "layouts/main",
		Params:    map[string]any{"title": "Hello"},
		Session:   map[string]any{"user": "ada"},
		Route:     map[string]string{"id": "42"},
		Request: config.Request{
			Method: "POST",
			URL:    "/articles?page=2",
			Form:   map[string]string{"title": "Draft"},
		},
		Prompts: []config.Prompt{{Name: "author", Message: "author", Default: "Ada"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"templates":{"dir":"views","extension":"html"}}`), "sample.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Templates.Extension != "html" || cfg.Request.Method != "GET" || cfg.Request.URL != "/" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParse_JSONWithComments(t *testing.T) {
	data := []byte(`{
  // views live next to the config
  "templates": {"dir": "views"},
  "route": {"id": "3",}, /* trailing comma */
}`)
	cfg, err := config.Parse(data, "sample.jsonc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"id": "3"}, cfg.Route); diff != "" {
		t.Fatalf("route mismatch (-want +got):\n%s", diff)
	}
	if cfg.Templates.Dir != "views" {
		t.Fatalf("templates dir: %q", cfg.Templates.Dir)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":         "  ",
		"invalid":       "templates: [",
		"missing dir":   "layout: main",
		"theme name":    "templates:\n  dir: views\ntheme:\n  variant: dim\n",
		"theme variant": "templates:\n  dir: views\ntheme:\n  name: night\n  variant: dim\n",
		"prompt name":   "templates:\n  dir: views\nprompts:\n  - message: hi\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(data), name); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewengine.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Layout != "layouts/main" {
		t.Fatalf("layout: %q", cfg.Layout)
	}
	if want := filepath.Join(dir, "views"); cfg.Templates.Dir != want {
		t.Fatalf("relative templates dir should resolve next to the config: want %q, got %q", want, cfg.Templates.Dir)
	}

	absolute := filepath.Join(t.TempDir(), "templates")
	absPath := filepath.Join(dir, "absolute.yaml")
	if err := os.WriteFile(absPath, []byte("templates:\n  dir: "+absolute+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.Load(absPath)
	if err != nil {
		t.Fatalf("load absolute: %v", err)
	}
	if cfg.Templates.Dir != absolute {
		t.Fatalf("absolute templates dir should be kept: %q", cfg.Templates.Dir)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
