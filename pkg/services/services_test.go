package services_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewengine/pkg/di"
	"github.com/goliatone/go-viewengine/pkg/services"
	"github.com/goliatone/go-viewengine/pkg/testsupport"
	"github.com/goliatone/go-viewengine/pkg/view/engine"
)

func TestRequest_Lookups(t *testing.T) {
	form := url.Values{"title": {"Hello"}, "page": {"body"}}
	req := httptest.NewRequest(http.MethodPost, "/articles?page=2&sort=asc", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-Id", "abc")

	r := services.NewRequest(req)

	checks := map[string][2]string{
		"get title":        {r.Get("title"), "Hello"},
		"get prefers body": {r.Get("page"), "body"},
		"get query only":   {r.Get("sort"), "asc"},
		"get default":      {r.Get("missing", "fallback"), "fallback"},
		"post":             {r.GetPost("title"), "Hello"},
		"post query miss":  {r.GetPost("sort"), ""},
		"put on post":      {r.GetPut("title", "none"), "none"},
		"query":            {r.GetQuery("page"), "2"},
		"query default":    {r.GetQuery("limit", "10"), "10"},
		"server method":    {r.GetServer("REQUEST_METHOD"), http.MethodPost},
		"server uri":       {r.GetServer("REQUEST_URI"), "/articles?page=2&sort=asc"},
		"server query":     {r.GetServer("QUERY_STRING"), "page=2&sort=asc"},
		"server header":    {r.GetServer("HTTP_X_REQUEST_ID"), "abc"},
		"server host":      {r.GetServer("HTTP_HOST"), "example.com"},
		"server default":   {r.GetServer("UNKNOWN", "n/a"), "n/a"},
	}
	for name, check := range checks {
		if check[0] != check[1] {
			t.Errorf("%s: want %q, got %q", name, check[1], check[0])
		}
	}
	if err := r.ParseErr(); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestRequest_GetPut(t *testing.T) {
	form := url.Values{"title": {"Updated"}}
	req := httptest.NewRequest(http.MethodPut, "/articles/1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	r := services.NewRequest(req)
	if got := r.GetPut("title"); got != "Updated" {
		t.Fatalf("put: want %q, got %q", "Updated", got)
	}
	if got := r.GetPost("title", "none"); got != "none" {
		t.Fatalf("post on put request: want %q, got %q", "none", got)
	}
}

func TestRequest_NilRequest(t *testing.T) {
	r := services.NewRequest(nil)
	if got := r.GetQuery("page", "1"); got != "1" {
		t.Fatalf("nil request should return default, got %q", got)
	}
}

func TestSession(t *testing.T) {
	s := services.NewSession(map[string]any{"user": "ada"})
	s.Set("role", "admin")

	if got := s.Get("user"); got != "ada" {
		t.Fatalf("get user: %v", got)
	}
	if got := s.Get("missing", "guest"); got != "guest" {
		t.Fatalf("get default: %v", got)
	}
	if got := s.Get("missing"); got != nil {
		t.Fatalf("get missing: %v", got)
	}
	if diff := cmp.Diff([]string{"role", "user"}, s.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	s.Remove("role")
	if s.Has("role") {
		t.Fatalf("role should be removed")
	}
}

func TestDispatcher(t *testing.T) {
	d := services.NewDispatcher(map[string]string{"id": "7"})
	d.SetParam("slug", "hello")

	if got := d.GetParam("id"); got != "7" {
		t.Fatalf("get id: %q", got)
	}
	if got := d.GetParam("missing", "x"); got != "x" {
		t.Fatalf("get default: %q", got)
	}
	if diff := cmp.Diff(map[string]string{"id": "7", "slug": "hello"}, d.Params()); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestRegister_WiresEngineShortcuts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/articles?page=3", nil)
	c := di.NewContainer()
	err := services.Register(c, services.Set{
		Request:    services.NewRequest(req),
		Session:    services.NewSession(map[string]any{"user": "ada"}),
		Dispatcher: services.NewDispatcher(map[string]string{"id": "42"}),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	adapter, err := engine.New(&testsupport.StubView{}, engine.WithServiceLocator(c))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	cases := []struct {
		method string
		args   []any
		want   any
	}{
		{method: "getQuery", args: []any{"page"}, want: "3"},
		{method: "getQuery", args: []any{"limit", "20"}, want: "20"},
		{method: "get", args: []any{"page"}, want: "3"},
		{method: "getServer", args: []any{"REQUEST_METHOD"}, want: http.MethodGet},
		{method: "getSession", args: []any{"user"}, want: "ada"},
		{method: "getParam", args: []any{"id"}, want: "42"},
	}
	for _, tc := range cases {
		got, err := adapter.Call(tc.method, tc.args...)
		if err != nil {
			t.Fatalf("%s: %v", tc.method, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want %v, got %v", tc.method, tc.want, got)
		}
	}
}

func TestRegister_RequiresContainer(t *testing.T) {
	if err := services.Register(nil, services.Set{}); err == nil {
		t.Fatalf("expected error for nil container")
	}
}
