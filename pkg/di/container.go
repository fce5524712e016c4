package di

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrServiceNotFound is returned by Get when no binding exists for a name.
var ErrServiceNotFound = errors.New("di: service not found")

// Factory builds a shared service on first use.
type Factory func(c *Container) (any, error)

type binding struct {
	value   any
	factory Factory

	once sync.Once
	err  error
}

// resolve returns the bound value, running a shared factory exactly once.
// Concurrent first calls wait for that run; a failed run keeps its error.
func (b *binding) resolve(c *Container) (any, error) {
	if b.factory == nil {
		return b.value, nil
	}
	b.once.Do(func() {
		b.value, b.err = b.factory(c)
	})
	return b.value, b.err
}

// Container stores services by name. Plain values are returned as-is, shared
// factories run once and their result is cached. The zero value is not usable,
// call NewContainer.
type Container struct {
	mu       sync.RWMutex
	bindings map[string]*binding
}

// Ensure Container satisfies the locator contract consumed by view engines.
var _ ServiceLocator = (*Container)(nil)

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		bindings: make(map[string]*binding),
	}
}

// Set binds value under name, replacing any prior binding.
func (c *Container) Set(name string, value any) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("di: service name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bindings[key] = &binding{value: value}
	return nil
}

// SetShared binds a lazily evaluated factory under name. The factory runs
// once, on the first Get, and its result (or error) is reused afterwards.
// Concurrent first Gets block until it returns. A factory must not Get its
// own name.
func (c *Container) SetShared(name string, factory Factory) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("di: service name is required")
	}
	if factory == nil {
		return fmt.Errorf("di: factory for %q is required", key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bindings[key] = &binding{factory: factory}
	return nil
}

// MustSet panics on registration failure. Useful for init-time wiring.
func (c *Container) MustSet(name string, value any) {
	if err := c.Set(name, value); err != nil {
		panic(err)
	}
}

// Get returns the service bound to name, running its factory when needed.
// The container lock is not held while a factory runs, so factories may read
// other services.
func (c *Container) Get(name string) (any, error) {
	key := strings.TrimSpace(name)

	c.mu.RLock()
	b, ok := c.bindings[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, key)
	}

	value, err := b.resolve(c)
	if err != nil {
		return nil, fmt.Errorf("di: build service %q: %w", key, err)
	}
	return value, nil
}

// ResolveService implements ServiceLocator. Missing services and factory
// failures both resolve to false.
func (c *Container) ResolveService(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, err := c.Get(name)
	if err != nil || value == nil {
		return nil, false
	}
	return value, true
}

// Has reports whether a binding exists for name.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.bindings[strings.TrimSpace(name)]
	return ok
}

// Remove drops the binding for name. Missing names are ignored.
func (c *Container) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.bindings, strings.TrimSpace(name))
}

// List returns a sorted list of bound service names.
func (c *Container) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
