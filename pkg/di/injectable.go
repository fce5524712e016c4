package di

// ServiceLocator resolves a service instance by name. Implementations return
// false when nothing usable is bound to the name.
type ServiceLocator interface {
	ResolveService(name string) (any, bool)
}

// Injectable carries an optional ServiceLocator reference. Types embed it to
// gain named service resolution without owning the locator's lifecycle.
type Injectable struct {
	locator ServiceLocator
}

// SetServiceLocator records the locator used by ResolveService.
func (i *Injectable) SetServiceLocator(locator ServiceLocator) {
	i.locator = locator
}

// ServiceLocator returns the recorded locator, or nil.
func (i *Injectable) ServiceLocator() ServiceLocator {
	return i.locator
}

// ResolveService asks the recorded locator for name. A missing locator
// resolves nothing.
func (i *Injectable) ResolveService(name string) (any, bool) {
	if i == nil || i.locator == nil {
		return nil, false
	}
	return i.locator.ResolveService(name)
}
