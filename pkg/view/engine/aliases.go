package engine

import "sort"

// Service names targeted by the getter shortcuts.
const (
	ServiceRequest    = "request"
	ServiceSession    = "session"
	ServiceDispatcher = "dispatcher"
)

type serviceAlias struct {
	service string
	// method replaces the called name when set.
	method string
}

var serviceAliases = map[string]serviceAlias{
	"get":        {service: ServiceRequest},
	"getPost":    {service: ServiceRequest},
	"getPut":     {service: ServiceRequest},
	"getQuery":   {service: ServiceRequest},
	"getServer":  {service: ServiceRequest},
	"getSession": {service: ServiceSession, method: "get"},
	"getParam":   {service: ServiceDispatcher},
}

// resolveAlias maps a called name to a service and the method invoked on it.
// Unknown names yield an empty service and the name unchanged.
func resolveAlias(name string) (service, method string) {
	alias, ok := serviceAliases[name]
	if !ok {
		return "", name
	}
	if alias.method != "" {
		return alias.service, alias.method
	}
	return alias.service, name
}

// AliasNames returns the sorted getter shortcuts routed to services.
func AliasNames() []string {
	names := make([]string, 0, len(serviceAliases))
	for name := range serviceAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
