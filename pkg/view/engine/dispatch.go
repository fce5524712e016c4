package engine

import (
	"log/slog"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Resolution is the outcome of looking up a method name that the adapter does
// not define itself. It is one of ResolvedFromRegistry, ResolvedFromService
// or Unresolved.
type Resolution interface {
	Invoke(args ...any) (any, error)
	resolution()
}

// ResolvedFromRegistry is a user method attached through AddMethod.
type ResolvedFromRegistry struct {
	Method string
	call   func(args ...any) (any, error)
}

func (r ResolvedFromRegistry) Invoke(args ...any) (any, error) {
	return r.call(args...)
}

func (ResolvedFromRegistry) resolution() {}

// ResolvedFromService is a method found on a named service. Target differs
// from Method when a shortcut renames the call, as getSession does.
type ResolvedFromService struct {
	Method   string
	Service  string
	Target   string
	Receiver any
	fn       reflect.Value
}

func (r ResolvedFromService) Invoke(args ...any) (any, error) {
	return invoke(r.Method, r.Target, r.fn, args)
}

func (ResolvedFromService) resolution() {}

// Unresolved carries the error explaining why a name could not be resolved.
type Unresolved struct {
	Method string
	Err    error
}

func (r Unresolved) Invoke(...any) (any, error) {
	return nil, r.Err
}

func (Unresolved) resolution() {}

// Resolve looks name up in order: attached methods, then the service named by
// the getter shortcuts (an empty name when none matches), then the method on
// that service.
func (a *Adapter) Resolve(name string) Resolution {
	a.mu.RLock()
	method, ok := a.methods[name]
	a.mu.RUnlock()
	if ok {
		a.logger.Debug("engine: dispatch to attached method", slog.String("method", name))
		return ResolvedFromRegistry{Method: name, call: method.call}
	}

	serviceName, target := resolveAlias(name)

	service, ok := a.ResolveService(serviceName)
	if !ok || !isObject(service) {
		a.logger.Debug("engine: dispatch service not valid",
			slog.String("method", name),
			slog.String("service", serviceName),
		)
		return Unresolved{Method: name, Err: &InvalidServiceError{Service: serviceName}}
	}

	fn, ok := lookupMethod(service, target)
	if !ok {
		a.logger.Debug("engine: dispatch method missing on service",
			slog.String("method", name),
			slog.String("service", serviceName),
			slog.String("target", target),
		)
		return Unresolved{Method: name, Err: &UndefinedAdapterMethodError{Method: name, Service: serviceName}}
	}

	a.logger.Debug("engine: dispatch to service",
		slog.String("method", name),
		slog.String("service", serviceName),
		slog.String("target", target),
	)
	return ResolvedFromService{
		Method:   name,
		Service:  serviceName,
		Target:   target,
		Receiver: service,
		fn:       fn,
	}
}

// Call invokes name with args through Resolve. Errors returned by the invoked
// function are passed through untouched.
func (a *Adapter) Call(name string, args ...any) (any, error) {
	return a.Resolve(name).Invoke(args...)
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return false
		}
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Struct:
		return true
	}
	return rv.NumMethod() > 0
}

// lookupMethod finds name on v, falling back to its exported spelling so
// getQuery matches GetQuery.
func lookupMethod(v any, name string) (reflect.Value, bool) {
	if name == "" {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if m := rv.MethodByName(name); m.IsValid() {
		return m, true
	}
	if exported := exportedName(name); exported != name {
		if m := rv.MethodByName(exported); m.IsValid() {
			return m, true
		}
	}
	return reflect.Value{}, false
}

func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
