package strategies

import (
	"context"
	"fmt"

	"github.com/verso-labs/quote-gateway/providers"
)

// Single routes all requests to a single provider.
type Single struct {
	target Target
	lookup ProviderLookup
}

// NewSingle creates a new single-provider strategy.
func NewSingle(target Target, lookup ProviderLookup) *Single {
	return &Single{target: target, lookup: lookup}
}

// Execute sends the request to the single configured provider.
func (s *Single) Execute(ctx context.Context, req providers.FetchRequest) ([]providers.Quote, error) {
	p, ok := s.lookup(s.target.Provider)
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", s.target.Provider)
	}
	if !supports(p, req) {
		return nil, fmt.Errorf("provider %s does not support tag %s", s.target.Provider, req.Tag)
	}
	return fetchFrom(ctx, p, req)
}
