package engine

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrInvalidMethodKind = errors.New("engine: invalid method kind")
	ErrInvalidService    = errors.New("engine: invalid service")
	ErrUndefinedMethod   = errors.New("engine: undefined adapter method")
)

// InvalidMethodKindError reports an AddMethod call with a value that cannot
// be bound to the adapter.
type InvalidMethodKindError struct {
	Name string
	Kind string
}

func (e *InvalidMethodKindError) Error() string {
	return fmt.Sprintf("engine: method %q must be a function bound to the adapter, got %s", e.Name, e.Kind)
}

func (e *InvalidMethodKindError) Is(target error) bool {
	return target == ErrInvalidMethodKind
}

// InvalidServiceError reports a dispatch whose service name resolved nothing
// usable. Service is empty when the method name matched no alias.
type InvalidServiceError struct {
	Service string
}

func (e *InvalidServiceError) Error() string {
	return fmt.Sprintf("engine: the injected service %q is not valid", e.Service)
}

func (e *InvalidServiceError) Is(target error) bool {
	return target == ErrInvalidService
}

// UndefinedAdapterMethodError reports a resolved service lacking the
// requested method. Method is the name the caller asked for.
type UndefinedAdapterMethodError struct {
	Method  string
	Service string
}

func (e *UndefinedAdapterMethodError) Error() string {
	return fmt.Sprintf("engine: the method %q doesn't exist on view", e.Method)
}

func (e *UndefinedAdapterMethodError) Is(target error) bool {
	return target == ErrUndefinedMethod
}

// ArgumentError reports arguments that cannot be passed to the target
// function. Method is the name the caller used; Target is set when a
// shortcut routed the call to a differently named service method.
type ArgumentError struct {
	Method string
	Target string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Target != "" && e.Target != e.Method {
		return fmt.Sprintf("engine: call %q (service method %q): %s", e.Method, e.Target, e.Reason)
	}
	return fmt.Sprintf("engine: call %q: %s", e.Method, e.Reason)
}
