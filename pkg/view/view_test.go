package view_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-viewengine/pkg/di"
	"github.com/goliatone/go-viewengine/pkg/services"
	"github.com/goliatone/go-viewengine/pkg/view"
	"github.com/goliatone/go-viewengine/pkg/view/engine"
	"github.com/goliatone/go-viewengine/pkg/view/engine/pongo"
)

var templates = fstest.MapFS{
	"articles/show.tpl":   {Data: []byte(`<h1>{{ title }}</h1>{{ partial("partials/meta", meta) }}`)},
	"partials/meta.tpl":   {Data: []byte(`<small>{{ author }}</small>`)},
	"layouts/main.tpl":    {Data: []byte(`<body>{{ content() }}</body>`)},
	"search.tpl":          {Data: []byte(`page {{ getQuery("page", "1") }} of {{ site }}`)},
	"partials/unsafe.tpl": {Data: []byte(`<b>{{ label }}</b><script>alert(1)</script>`)},
}

func newView(t *testing.T, options ...view.Option) *view.View {
	t.Helper()

	opts := append([]view.Option{
		view.WithFS(templates),
		view.WithEngine("tpl", pongo.Factory(pongo.WithFS(templates))),
	}, options...)
	return view.New(opts...)
}

func TestView_RenderWithPartialAndLayout(t *testing.T) {
	v := newView(t)

	page, err := v.Render("articles/show", map[string]any{
		"title": "Hello",
		"meta":  map[string]any{"author": "Ada"},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	wantPage := "<h1>Hello</h1><small>Ada</small>"
	if page != wantPage {
		t.Fatalf("page mismatch\nwant: %q\n got: %q", wantPage, page)
	}

	content, err := v.Content()
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if content != wantPage {
		t.Fatalf("content should cache last render, got %q", content)
	}

	layout, err := v.Render("layouts/main", nil)
	if err != nil {
		t.Fatalf("render layout: %v", err)
	}
	if want := "<body>" + wantPage + "</body>"; layout != want {
		t.Fatalf("layout mismatch\nwant: %q\n got: %q", want, layout)
	}
}

func TestView_PartialDoesNotReplaceContent(t *testing.T) {
	v := newView(t)
	v.SetContent("cached")

	out, err := v.Partial("partials/meta", map[string]any{"author": "Grace"})
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if out != "<small>Grace</small>" {
		t.Fatalf("partial: %q", out)
	}
	if content, _ := v.Content(); content != "cached" {
		t.Fatalf("partial should not replace content, got %q", content)
	}
}

func TestView_EnginesUseServiceLocatorAndVars(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/search?page=4", nil)
	container := di.NewContainer()
	if err := services.Register(container, services.Set{Request: services.NewRequest(req)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	v := newView(t,
		view.WithServiceLocator(container),
		view.WithVars(map[string]any{"site": "docs"}),
	)

	out, err := v.Render("search", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "page 4 of docs" {
		t.Fatalf("render: %q", out)
	}

	v.SetVar("site", "blog")
	out, err = v.Render("search", map[string]any{"site": "override"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "page 4 of override" {
		t.Fatalf("params should win over vars, got %q", out)
	}
	if site, ok := v.Var("site"); !ok || site != "blog" {
		t.Fatalf("var: %v", site)
	}
}

func TestView_EngineIsBuiltOnceAndBoundToView(t *testing.T) {
	v := newView(t)

	first, err := v.Engine(".tpl")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	second, err := v.Engine("tpl")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if first != second {
		t.Fatalf("engine should be cached")
	}
	if first.View() != v {
		t.Fatalf("engine should be bound to the view")
	}
}

func TestView_AttachedMethodsReachTemplates(t *testing.T) {
	files := fstest.MapFS{"greet.tpl": {Data: []byte(`{{ hello("Ada") }}`)}}
	v := view.New(
		view.WithFS(files),
		view.WithEngine("tpl", pongo.Factory(pongo.WithFS(files))),
	)

	eng, err := v.Engine("tpl")
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if _, err := eng.AddMethod("hello", func(_ *engine.Adapter, name string) string {
		return "hello " + name
	}); err != nil {
		t.Fatalf("add method: %v", err)
	}

	out, err := v.Render("greet", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "hello Ada" {
		t.Fatalf("render: %q", out)
	}
}

func TestView_PartialSanitizer(t *testing.T) {
	v := newView(t, view.WithPartialSanitizer(bluemonday.UGCPolicy()))

	out, err := v.Partial("partials/unsafe", map[string]any{"label": "ok"})
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if out != "<b>ok</b>" {
		t.Fatalf("sanitized partial: %q", out)
	}
}

func TestView_TemplateNotFound(t *testing.T) {
	v := newView(t)

	if _, err := v.Render("missing", nil); !errors.Is(err, view.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestView_NoEngines(t *testing.T) {
	v := view.New(view.WithFS(templates))

	if _, err := v.Render("search", nil); err == nil {
		t.Fatalf("expected error without engines")
	}
}

func TestView_RegisterEngine(t *testing.T) {
	v := view.New()
	factory := view.EngineFactory(pongo.Factory(pongo.WithFS(templates)))

	if err := v.RegisterEngine("html", factory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := v.RegisterEngine(".HTML", factory); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
	if err := v.RegisterEngine("", factory); err == nil {
		t.Fatalf("expected empty extension error")
	}
	if err := v.RegisterEngine("tpl", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}
	if err := v.RegisterEngine("tpl", factory); err != nil {
		t.Fatalf("register tpl: %v", err)
	}

	if diff := cmp.Diff([]string{".html", ".tpl"}, v.Extensions()); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}

func acmeSelection() *theme.Selection {
	return &theme.Selection{
		Theme:   "acme",
		Variant: "dark",
		Manifest: &theme.Manifest{
			Name:    "acme",
			Version: "1.0.0",
			Tokens:  map[string]string{"brand": "#123456", "accent": "#ff0000"},
			Templates: map[string]string{
				"partials/meta": "themes/acme/meta.tpl",
			},
			Assets: theme.Assets{
				Prefix: "/assets/themes/acme",
				Files:  map[string]string{"stylesheet": "theme.css"},
			},
			Variants: map[string]theme.Variant{
				"dark": {
					Tokens: map[string]string{"brand": "#654321"},
					Templates: map[string]string{
						"layouts/main": "themes/acme/dark/main.tpl",
					},
					Assets: theme.Assets{
						Files: map[string]string{"vendor": "vendor.dark.js"},
					},
				},
			},
		},
	}
}

func TestView_ThemeOverridesTemplatesAndExposesTokens(t *testing.T) {
	files := fstest.MapFS{
		"articles/show.tpl":         {Data: []byte(`<h1>{{ title }}</h1>{{ partial("partials/meta", meta) }}`)},
		"partials/meta.tpl":         {Data: []byte(`<small>{{ author }}</small>`)},
		"layouts/main.tpl":          {Data: []byte(`<body>{{ content() }}</body>`)},
		"themes/acme/meta.tpl":      {Data: []byte(`<em>{{ author }}</em>`)},
		"themes/acme/dark/main.tpl": {Data: []byte(`<body data-brand="{{ theme.tokens.brand }}" data-accent="{{ theme.tokens.accent }}">{{ content() }}</body>`)},
		"assets.tpl":                {Data: []byte(`{{ theme.assets.stylesheet }} {{ theme.assets.vendor }} {{ theme.name }}/{{ theme.variant }}`)},
	}
	selector := &stubThemeSelector{selection: acmeSelection()}
	v := view.New(
		view.WithFS(files),
		view.WithEngine("tpl", pongo.Factory(pongo.WithFS(files))),
		view.WithThemeSelector(selector, " acme ", "dark"),
	)

	page, err := v.Render("articles/show", map[string]any{
		"title": "Hello",
		"meta":  map[string]any{"author": "Ada"},
	})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if want := "<h1>Hello</h1><em>Ada</em>"; page != want {
		t.Fatalf("themed partial mismatch\nwant: %q\n got: %q", want, page)
	}

	layout, err := v.Render("layouts/main", nil)
	if err != nil {
		t.Fatalf("render layout: %v", err)
	}
	if want := `<body data-brand="#654321" data-accent="#ff0000"><h1>Hello</h1><em>Ada</em></body>`; layout != want {
		t.Fatalf("variant layout mismatch\nwant: %q\n got: %q", want, layout)
	}

	assets, err := v.Render("assets", nil)
	if err != nil {
		t.Fatalf("render assets: %v", err)
	}
	if want := "/assets/themes/acme/theme.css /assets/themes/acme/vendor.dark.js acme/dark"; assets != want {
		t.Fatalf("assets mismatch\nwant: %q\n got: %q", want, assets)
	}

	if diff := cmp.Diff([]selectorCall{{name: "acme", variant: "dark"}}, selector.calls, cmp.AllowUnexported(selectorCall{})); diff != "" {
		t.Fatalf("selector should run once (-want +got):\n%s", diff)
	}
}

func TestView_ThemeSelectionErrorFailsRender(t *testing.T) {
	boom := errors.New("unknown theme")
	v := newView(t, view.WithThemeSelector(&stubThemeSelector{err: boom}, "ghost", ""))

	if _, err := v.Render("search", nil); !errors.Is(err, boom) {
		t.Fatalf("expected selector error, got %v", err)
	}
}
