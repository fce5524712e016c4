package services

import (
	"net/http"
	"strings"
	"sync"
)

// Request exposes HTTP input to templates. Lookups return the first value for
// a name, or the first default when the name is missing.
type Request struct {
	req *http.Request

	parseOnce sync.Once
	parseErr  error
}

// NewRequest wraps r.
func NewRequest(r *http.Request) *Request {
	return &Request{req: r}
}

// HTTPRequest returns the wrapped request.
func (r *Request) HTTPRequest() *http.Request {
	return r.req
}

// Get looks name up in the body form and then the query string.
func (r *Request) Get(name string, defaults ...string) string {
	if r.req == nil {
		return firstDefault(defaults)
	}
	r.parse()
	return lookup(r.req.Form, name, defaults)
}

// GetPost looks name up in a POST body form.
func (r *Request) GetPost(name string, defaults ...string) string {
	if r.req == nil || r.req.Method != http.MethodPost {
		return firstDefault(defaults)
	}
	r.parse()
	return lookup(r.req.PostForm, name, defaults)
}

// GetPut looks name up in a PUT body form.
func (r *Request) GetPut(name string, defaults ...string) string {
	if r.req == nil || r.req.Method != http.MethodPut {
		return firstDefault(defaults)
	}
	r.parse()
	return lookup(r.req.PostForm, name, defaults)
}

// GetQuery looks name up in the URL query string.
func (r *Request) GetQuery(name string, defaults ...string) string {
	if r.req == nil || r.req.URL == nil {
		return firstDefault(defaults)
	}
	return lookup(r.req.URL.Query(), name, defaults)
}

// GetServer returns CGI style server variables: REQUEST_METHOD, REQUEST_URI,
// QUERY_STRING, SERVER_PROTOCOL, REMOTE_ADDR, HTTP_HOST and HTTP_<HEADER>.
func (r *Request) GetServer(name string, defaults ...string) string {
	if r.req == nil {
		return firstDefault(defaults)
	}

	var value string
	key := strings.ToUpper(strings.TrimSpace(name))
	switch key {
	case "REQUEST_METHOD":
		value = r.req.Method
	case "REQUEST_URI":
		value = r.req.RequestURI
		if value == "" && r.req.URL != nil {
			value = r.req.URL.RequestURI()
		}
	case "QUERY_STRING":
		if r.req.URL != nil {
			value = r.req.URL.RawQuery
		}
	case "SERVER_PROTOCOL":
		value = r.req.Proto
	case "REMOTE_ADDR":
		value = r.req.RemoteAddr
	case "HTTP_HOST":
		value = r.req.Host
	default:
		if header, ok := strings.CutPrefix(key, "HTTP_"); ok {
			value = r.req.Header.Get(strings.ReplaceAll(header, "_", "-"))
		}
	}

	if value == "" {
		return firstDefault(defaults)
	}
	return value
}

// ParseErr reports a body parse failure from an earlier lookup.
func (r *Request) ParseErr() error {
	return r.parseErr
}

func (r *Request) parse() {
	r.parseOnce.Do(func() {
		r.parseErr = r.req.ParseForm()
	})
}

func lookup(values map[string][]string, name string, defaults []string) string {
	if found, ok := values[name]; ok && len(found) > 0 {
		return found[0]
	}
	return firstDefault(defaults)
}

func firstDefault(defaults []string) string {
	if len(defaults) == 0 {
		return ""
	}
	return defaults[0]
}
