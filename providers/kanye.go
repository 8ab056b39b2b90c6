package providers

import (
	"context"
	"strings"
)

// KanyeProvider implements the Provider interface for kanye.rest, a
// single-endpoint API that returns one random quote per call.
type KanyeProvider struct {
	Base
	resolver *Resolver
}

// NewKanye creates a new kanye.rest provider. The API needs no key.
func NewKanye(baseURL string) (*KanyeProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.kanye.rest"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &KanyeProvider{
		Base:     Base{name: "kanye", baseURL: baseURL},
		resolver: NewResolver("kanye", baseURL),
	}, nil
}

// kanyeResponse is the whole wire surface of the API.
type kanyeResponse struct {
	Quote string `json:"quote"`
}

// Random fetches a random quote. The endpoint carries no id, author, or
// date, so the id is derived from the text and the author is fixed.
func (p *KanyeProvider) Random(ctx context.Context) (Quote, error) {
	var resp kanyeResponse
	found, err := p.resolver.GetJSON(ctx, "/", &resp)
	if err != nil {
		return Quote{}, err
	}
	if !found || resp.Quote == "" {
		return Quote{}, ErrNoQuote
	}

	q, err := NewQuote(DeriveID(resp.Quote), resp.Quote, "Kanye West")
	if err != nil {
		return Quote{}, err
	}
	return q.WithSource(p.baseURL).WithTags(p.SupportedTags()...), nil
}

// SupportedTags returns the fixed tag set every kanye quote is filed under.
func (p *KanyeProvider) SupportedTags() []string {
	return []string{"kanye", "music"}
}

// SupportsTag reports whether the tag is in the fixed kanye tag set.
func (p *KanyeProvider) SupportsTag(tag string) bool {
	for _, t := range p.SupportedTags() {
		if t == tag {
			return true
		}
	}
	return false
}
