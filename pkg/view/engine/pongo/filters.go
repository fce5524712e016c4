package pongo

import (
	"bytes"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce     sync.Once
	markdownRenderer goldmark.Markdown
)

func markdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownRenderer
}

// registerDefaultFilters installs the filters templates rely on. pongo2
// filters are process wide, so existing registrations are kept.
func registerDefaultFilters() {
	for name, fn := range map[string]pongo2.FilterFunction{
		"trim":       filterTrim,
		"lowerfirst": filterLowerFirst,
		"markdown":   filterMarkdown,
	} {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterLowerFirst lower-cases the first non-space rune.
func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	s := in.String()
	idx := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if idx < 0 {
		return pongo2.AsValue(s), nil
	}
	r, size := utf8.DecodeRuneInString(s[idx:])
	return pongo2.AsValue(s[:idx] + string(unicode.ToLower(r)) + s[idx+size:]), nil
}

// filterMarkdown renders GitHub flavoured markdown to HTML. Raw HTML in the
// input is not passed through.
func filterMarkdown(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := markdown().Convert([]byte(in.String()), &buf); err != nil {
		return nil, &pongo2.Error{Sender: "filter:markdown", OrigError: err}
	}
	return pongo2.AsSafeValue(buf.String()), nil
}
