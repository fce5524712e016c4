package services

import (
	"fmt"

	"github.com/goliatone/go-viewengine/pkg/di"
	"github.com/goliatone/go-viewengine/pkg/view/engine"
)

// Set groups the services a render pass exposes to templates. Nil members are
// skipped by Register.
type Set struct {
	Request    *Request
	Session    *Session
	Dispatcher *Dispatcher
}

// Register binds the non-nil services of set into c under the names used by
// the engine getter shortcuts.
func Register(c *di.Container, set Set) error {
	if c == nil {
		return fmt.Errorf("services: container is required")
	}
	if set.Request != nil {
		if err := c.Set(engine.ServiceRequest, set.Request); err != nil {
			return err
		}
	}
	if set.Session != nil {
		if err := c.Set(engine.ServiceSession, set.Session); err != nil {
			return err
		}
	}
	if set.Dispatcher != nil {
		if err := c.Set(engine.ServiceDispatcher, set.Dispatcher); err != nil {
			return err
		}
	}
	return nil
}
