// Package strategies implements the routing strategies used by the gateway.
//
// Available strategies:
//   - Single:      always routes to one configured provider.
//   - Fallback:    tries providers in order, retrying on failure.
//   - LoadBalance: distributes fetches across providers by weight.
//   - Conditional: routes based on request field matching rules.
package strategies

import (
	"context"

	"github.com/verso-labs/quote-gateway/providers"
)

// Strategy defines the interface for routing strategies.
type Strategy interface {
	// Execute runs the strategy and returns the fetched quotes.
	Execute(ctx context.Context, req providers.FetchRequest) ([]providers.Quote, error)
}

// ProviderLookup resolves a provider name to a Provider instance.
type ProviderLookup func(name string) (providers.Provider, bool)

// Target mirrors the gateway config target for use in strategies.
type Target struct {
	Provider string
	Weight   float64
}

// fetchFrom issues the request against one provider. SearchProviders get a
// translated search when the request carries a tag or author filter;
// everything else answers with repeated Random calls.
func fetchFrom(ctx context.Context, p providers.Provider, req providers.FetchRequest) ([]providers.Quote, error) {
	if sp, ok := p.(providers.SearchProvider); ok && (req.Tag != "" || req.Author != "") {
		q := providers.SearchQuery{Author: req.Author, Limit: req.Count}
		if req.Tag != "" {
			q.Tags = []string{req.Tag}
		}
		return sp.Search(ctx, q)
	}

	quotes := make([]providers.Quote, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		quote, err := p.Random(ctx)
		if err != nil {
			if len(quotes) > 0 {
				return quotes, nil // partial batch beats none
			}
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// supports reports whether the provider can serve the request's tag filter.
// Requests without a tag are served by any provider.
func supports(p providers.Provider, req providers.FetchRequest) bool {
	return req.Tag == "" || p.SupportsTag(req.Tag)
}
