package generation

import (
	"fmt"
	"strings"
)

// Router selects a provider for each request. Providers are consulted in
// the order they were registered, so callers register the local model
// service first and the cloud providers after it.
type Router struct {
	providers []Provider
}

// NewRouter creates a Router over providers in precedence order. Nil
// providers are skipped.
func NewRouter(providers ...Provider) *Router {
	r := &Router{providers: make([]Provider, 0, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// Select returns the provider that should serve kind.
//
// A non-empty override names a provider explicitly (case-insensitive) and
// bypasses precedence. Otherwise the first provider that supports kind is
// returned. ErrConfiguration is returned when nothing can serve the request.
func (r *Router) Select(kind ArtifactKind, override string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(override))
	if name != "" {
		for _, p := range r.providers {
			if p.Name() != name {
				continue
			}
			if !p.Supports(kind) {
				return nil, fmt.Errorf("%w: provider %q is not configured for %s", ErrConfiguration, name, kind)
			}
			return p, nil
		}
		return nil, fmt.Errorf("%w: provider %q is not configured", ErrConfiguration, name)
	}

	for _, p := range r.providers {
		if p.Supports(kind) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no provider configured for %s", ErrConfiguration, kind)
}

// Names returns the registered provider names in precedence order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
