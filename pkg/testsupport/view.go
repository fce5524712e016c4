package testsupport

// PartialCall records the arguments of one StubView.Partial call.
type PartialCall struct {
	Path   string
	Params map[string]any
}

// StubView is a scripted view for adapter tests. Partial returns PartialFn's
// result when set, otherwise PartialOutput.
type StubView struct {
	ContentValue  string
	ContentErr    error
	PartialOutput string
	PartialErr    error
	PartialFn     func(path string, params map[string]any) (string, error)

	Partials []PartialCall
}

// Content returns the scripted content and error.
func (v *StubView) Content() (string, error) {
	return v.ContentValue, v.ContentErr
}

// Partial records the call and returns the scripted result.
func (v *StubView) Partial(path string, params map[string]any) (string, error) {
	v.Partials = append(v.Partials, PartialCall{Path: path, Params: params})
	if v.PartialFn != nil {
		return v.PartialFn(path, params)
	}
	return v.PartialOutput, v.PartialErr
}

// LocatorFunc adapts a function to the service locator contract.
type LocatorFunc func(name string) (any, bool)

// ResolveService calls f.
func (f LocatorFunc) ResolveService(name string) (any, bool) {
	return f(name)
}
