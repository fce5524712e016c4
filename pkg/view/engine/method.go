package engine

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Method is a user defined function attached to an adapter. The adapter it
// was registered on is always passed as a.
type Method func(a *Adapter, args ...any) (any, error)

type boundMethod struct {
	name string
	call func(args ...any) (any, error)
}

var adapterPtrType = reflect.TypeOf((*Adapter)(nil))

// AddMethod attaches fn to the adapter under name, replacing any previous
// method with the same name. fn must be a Method or any function whose first
// parameter is *Adapter; the adapter is bound as that parameter. The adapter
// is returned to allow chaining.
func (a *Adapter) AddMethod(name string, fn any) (*Adapter, error) {
	call, err := a.bind(name, fn)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.methods[name] = boundMethod{name: name, call: call}
	a.mu.Unlock()

	a.logger.Debug("engine: method registered", slog.String("method", name))
	return a, nil
}

// MustAddMethod panics when fn cannot be bound. Useful for init-time wiring.
func (a *Adapter) MustAddMethod(name string, fn any) *Adapter {
	if _, err := a.AddMethod(name, fn); err != nil {
		panic(err)
	}
	return a
}

// HasMethod reports whether a user method is registered under name.
func (a *Adapter) HasMethod(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.methods[name]
	return ok
}

func (a *Adapter) bind(name string, fn any) (func(args ...any) (any, error), error) {
	switch f := fn.(type) {
	case nil:
		return nil, &InvalidMethodKindError{Name: name, Kind: "nil"}
	case Method:
		if f == nil {
			return nil, &InvalidMethodKindError{Name: name, Kind: "nil function"}
		}
		return func(args ...any) (any, error) { return f(a, args...) }, nil
	case func(*Adapter, ...any) (any, error):
		if f == nil {
			return nil, &InvalidMethodKindError{Name: name, Kind: "nil function"}
		}
		return func(args ...any) (any, error) { return f(a, args...) }, nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, &InvalidMethodKindError{Name: name, Kind: fmt.Sprintf("%T", fn)}
	}
	if rv.IsNil() {
		return nil, &InvalidMethodKindError{Name: name, Kind: "nil function"}
	}
	t := rv.Type()
	if t.NumIn() == 0 || t.In(0) != adapterPtrType {
		return nil, &InvalidMethodKindError{Name: name, Kind: fmt.Sprintf("%T", fn)}
	}

	receiver := reflect.ValueOf(a)
	return func(args ...any) (any, error) {
		return invoke(name, "", rv, args, receiver)
	}, nil
}
