package providers

import "fmt"

// Registry manages a collection of providers for lookup by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns a provider by name and whether it was found.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// MustGet returns a provider by name or panics if not found.
func (r *Registry) MustGet(name string) Provider {
	p, ok := r.providers[name]
	if !ok {
		panic(fmt.Sprintf("provider not found: %s", name))
	}
	return p
}

// List returns the names of all registered providers.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// AllTags returns TagInfo for the static tag vocabularies of all registered
// providers, deduplicated by name (first provider wins).
func (r *Registry) AllTags() []TagInfo {
	seen := make(map[string]bool)
	var tags []TagInfo
	for _, p := range r.providers {
		for _, t := range TagsFromList(p.Name(), p.SupportedTags()) {
			if seen[t.Name] {
				continue
			}
			seen[t.Name] = true
			tags = append(tags, t)
		}
	}
	return tags
}

// FindByTag returns the first provider that supports the given tag.
func (r *Registry) FindByTag(tag string) (Provider, bool) {
	for _, p := range r.providers {
		if p.SupportsTag(tag) {
			return p, true
		}
	}
	return nil, false
}
