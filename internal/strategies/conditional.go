package strategies

import (
	"context"
	"fmt"
	"strings"

	"github.com/verso-labs/quote-gateway/providers"
)

// Rule maps a request condition to a target provider.
// Supported condition keys:
//   - "tag":        exact match on the request tag
//   - "tag_prefix": prefix match on the request tag
//   - "author":     exact match on the request author (case-insensitive)
type Rule struct {
	Key    string
	Value  string
	Target Target
}

// Conditional routes requests to different providers based on matching rules.
// Rules are evaluated in order; the first match wins. Requests that match no
// rule fall through to the default target.
type Conditional struct {
	rules      []Rule
	defaultTgt Target
	lookup     ProviderLookup
}

// NewConditional creates a new conditional routing strategy.
func NewConditional(rules []Rule, defaultTgt Target, lookup ProviderLookup) *Conditional {
	return &Conditional{rules: rules, defaultTgt: defaultTgt, lookup: lookup}
}

// Execute evaluates the rules against the request and routes accordingly.
func (c *Conditional) Execute(ctx context.Context, req providers.FetchRequest) ([]providers.Quote, error) {
	target := c.defaultTgt
	for _, rule := range c.rules {
		if rule.matches(req) {
			target = rule.Target
			break
		}
	}
	if target.Provider == "" {
		return nil, fmt.Errorf("no rule matched and no default target configured")
	}

	p, ok := c.lookup(target.Provider)
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", target.Provider)
	}
	if !supports(p, req) {
		return nil, fmt.Errorf("provider %s does not support tag %s", target.Provider, req.Tag)
	}
	return fetchFrom(ctx, p, req)
}

func (r Rule) matches(req providers.FetchRequest) bool {
	switch r.Key {
	case "tag":
		return req.Tag != "" && req.Tag == r.Value
	case "tag_prefix":
		return req.Tag != "" && strings.HasPrefix(req.Tag, r.Value)
	case "author":
		return req.Author != "" && strings.EqualFold(req.Author, r.Value)
	default:
		return false
	}
}
