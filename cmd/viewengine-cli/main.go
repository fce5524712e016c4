// viewengine-cli renders a template tree from the command line. A YAML or
// JSON config describes the templates, the params and the synthetic request,
// session and route state that templates read through getQuery, getSession,
// getParam and friends.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-viewengine/internal/config"
	"github.com/goliatone/go-viewengine/pkg/di"
	"github.com/goliatone/go-viewengine/pkg/services"
	"github.com/goliatone/go-viewengine/pkg/view"
	"github.com/goliatone/go-viewengine/pkg/view/engine/pongo"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	template    string
	layout      string
	params      []string
	query       string
	output      string
	interactive bool
	verbose     bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("viewengine-cli", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.configPath, "config", "c", "viewengine.yaml", "config file (YAML or JSON)")
	flagSet.StringVarP(&opts.template, "template", "t", "", "template to render")
	flagSet.StringVar(&opts.layout, "layout", "", "layout rendered around the template (overrides config)")
	flagSet.StringArrayVarP(&opts.params, "param", "p", nil, "template param as key=value (repeatable)")
	flagSet.StringVar(&opts.query, "query", "", "query string appended to the configured request URL")
	flagSet.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for configured params that are missing")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if strings.TrimSpace(opts.template) == "" {
		return fmt.Errorf("--template is required")
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	params, err := buildParams(cfg.Params, opts.params)
	if err != nil {
		return err
	}
	if opts.interactive {
		if err := promptParams(ctx, newSurveyPrompter(), cfg.Prompts, params); err != nil {
			return err
		}
	}

	req, err := buildRequest(cfg.Request, opts.query)
	if err != nil {
		return err
	}

	container := di.NewContainer()
	if err := services.Register(container, services.Set{
		Request:    services.NewRequest(req),
		Session:    services.NewSession(cfg.Session),
		Dispatcher: services.NewDispatcher(cfg.Route),
	}); err != nil {
		return err
	}

	templates := os.DirFS(cfg.Templates.Dir)
	viewOpts := []view.Option{
		view.WithFS(templates),
		view.WithServiceLocator(container),
		view.WithLogger(logger),
		view.WithEngine(cfg.Templates.Extension, pongo.Factory(
			pongo.WithFS(templates),
			pongo.WithExtension(cfg.Templates.Extension),
			pongo.WithGlobalData(cfg.Globals),
		)),
	}
	if cfg.Theme != nil {
		viewOpts = append(viewOpts, view.WithThemeSelector(newManifestSelector(*cfg.Theme), cfg.Theme.Name, cfg.Theme.Variant))
	}
	if cfg.SanitizePartials {
		viewOpts = append(viewOpts, view.WithPartialSanitizer(bluemonday.UGCPolicy()))
	}
	v := view.New(viewOpts...)

	out, err := v.Render(opts.template, params)
	if err != nil {
		return err
	}

	layout := cfg.Layout
	if opts.layout != "" {
		layout = opts.layout
	}
	if layout != "" {
		if out, err = v.Render(layout, params); err != nil {
			return err
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		logger.Info("output written", slog.String("path", opts.output))
		return nil
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}

func buildParams(base map[string]any, pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(base)+len(pairs))
	for key, value := range base {
		params[key] = value
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, want key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func buildRequest(cfg config.Request, query string) (*http.Request, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse request url: %w", err)
	}
	if query = strings.TrimPrefix(strings.TrimSpace(query), "?"); query != "" {
		if target.RawQuery != "" {
			target.RawQuery += "&"
		}
		target.RawQuery += query
	}

	var body io.Reader
	if len(cfg.Form) > 0 {
		form := url.Values{}
		for key, value := range cfg.Form {
			form.Set(key, value)
		}
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(cfg.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.RequestURI = target.RequestURI()
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, value := range cfg.Header {
		req.Header.Set(key, value)
	}
	return req, nil
}
