package providers

// Base provides common fields and methods shared by REST-based provider
// implementations. Embed this struct to avoid repeating name and baseURL
// handling across providers.
type Base struct {
	name    string
	baseURL string
}

// Name returns the provider name.
func (b *Base) Name() string { return b.name }

// BaseURL returns the provider base URL.
func (b *Base) BaseURL() string { return b.baseURL }

// TagsFromList builds a TagInfo slice from a list of tag names.
// Provider DiscoverTags implementations call this for their static
// vocabularies to avoid repetitive boilerplate.
func TagsFromList(providerName string, names []string) []TagInfo {
	tags := make([]TagInfo, len(names))
	for i, name := range names {
		tags[i] = TagInfo{
			Name:   name,
			Source: providerName,
		}
	}
	return tags
}

// ProviderSource is a read-only view over a collection of registered
// providers. Both *Registry and *Gateway implement this interface, so
// handlers that only need to read provider info can accept a ProviderSource
// instead of a concrete *Registry.
type ProviderSource interface {
	Get(name string) (Provider, bool)
	List() []string
	AllTags() []TagInfo
	FindByTag(tag string) (Provider, bool)
}
