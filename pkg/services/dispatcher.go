package services

import "sync"

// Dispatcher carries the route parameters matched for the current request.
type Dispatcher struct {
	mu     sync.RWMutex
	params map[string]string
}

// NewDispatcher creates a dispatcher with the matched params.
func NewDispatcher(params map[string]string) *Dispatcher {
	d := &Dispatcher{params: make(map[string]string, len(params))}
	d.SetParams(params)
	return d
}

// GetParam returns the route param name, or the first default.
func (d *Dispatcher) GetParam(name string, defaults ...string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if value, ok := d.params[name]; ok {
		return value
	}
	return firstDefault(defaults)
}

func (d *Dispatcher) SetParam(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.params[name] = value
}

// SetParams merges params into the current set.
func (d *Dispatcher) SetParams(params map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name, value := range params {
		d.params[name] = value
	}
}

// Params returns a copy of the current params.
func (d *Dispatcher) Params() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(d.params))
	for name, value := range d.params {
		out[name] = value
	}
	return out
}
