package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TronaldProvider implements the Provider interface for tronalddump.io, a
// political-quote archive with HAL-style responses and meme image rendering.
type TronaldProvider struct {
	Base
	resolver *Resolver
}

// NewTronald creates a new tronalddump.io provider. The API needs no key.
func NewTronald(baseURL string) (*TronaldProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.tronalddump.io"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &TronaldProvider{
		Base:     Base{name: "tronald", baseURL: baseURL},
		resolver: NewResolver("tronald", baseURL).WithAccept("application/hal+json"),
	}, nil
}

// tronaldQuote mirrors a single HAL quote resource.
type tronaldQuote struct {
	QuoteID    string   `json:"quote_id"`
	Value      string   `json:"value"`
	AppearedAt string   `json:"appeared_at"`
	Tags       []string `json:"tags"`
	Embedded   struct {
		Author []tronaldAuthor `json:"author"`
		Source []tronaldSource `json:"source"`
	} `json:"_embedded"`
}

type tronaldAuthor struct {
	Name string `json:"name"`
}

type tronaldSource struct {
	URL string `json:"url"`
}

// tronaldSearchResult mirrors the HAL search envelope.
type tronaldSearchResult struct {
	Count    int `json:"count"`
	Total    int `json:"total"`
	Embedded struct {
		Quotes []tronaldQuote `json:"quotes"`
	} `json:"_embedded"`
}

// Random fetches a single random quote from /random/quote.
func (p *TronaldProvider) Random(ctx context.Context) (Quote, error) {
	var resp tronaldQuote
	found, err := p.resolver.GetJSON(ctx, "/random/quote", &resp)
	if err != nil {
		return Quote{}, err
	}
	if !found {
		return Quote{}, ErrNoQuote
	}
	return p.convert(resp)
}

// Search queries /search/quote. The archive supports free-text queries and a
// single tag filter; extra tags beyond the first are ignored.
func (p *TronaldProvider) Search(ctx context.Context, q SearchQuery) ([]Quote, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	values := url.Values{}
	if q.Query != "" {
		values.Set("query", q.Query)
	}
	if len(q.Tags) > 0 {
		values.Set("tag", q.Tags[0])
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page-1)) // upstream pages are zero-based
	}

	var resp tronaldSearchResult
	found, err := p.resolver.GetJSON(ctx, "/search/quote?"+values.Encode(), &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	limit := q.Limit
	if limit <= 0 || limit > len(resp.Embedded.Quotes) {
		limit = len(resp.Embedded.Quotes)
	}
	quotes := make([]Quote, 0, limit)
	for _, r := range resp.Embedded.Quotes[:limit] {
		quote, err := p.convert(r)
		if err != nil {
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// QuoteImage fetches the rendered meme image bytes for a quote.
func (p *TronaldProvider) QuoteImage(ctx context.Context, id ID) ([]byte, error) {
	if strings.TrimSpace(id.String()) == "" {
		return nil, fmt.Errorf("tronald: quote id must not be blank")
	}
	return p.resolver.GetStream(ctx, "/quote/"+url.PathEscape(id.String())+"/meme")
}

// SupportedTags returns the fixed routing tags for the archive.
func (p *TronaldProvider) SupportedTags() []string {
	return []string{"politics", "trump"}
}

// SupportsTag reports whether the tag is in the fixed tag set.
func (p *TronaldProvider) SupportsTag(tag string) bool {
	for _, t := range p.SupportedTags() {
		if t == tag {
			return true
		}
	}
	return false
}

// convert maps a HAL quote into the common representation. Quotes come
// tagged by topic upstream; the provider's own routing tags are appended so
// cache lookups by "politics"/"trump" always match.
func (p *TronaldProvider) convert(r tronaldQuote) (Quote, error) {
	id, err := ParseID(r.QuoteID)
	if err != nil {
		return Quote{}, err
	}

	author := "Donald Trump"
	if len(r.Embedded.Author) > 0 && r.Embedded.Author[0].Name != "" {
		author = r.Embedded.Author[0].Name
	}

	q, err := NewQuote(id, r.Value, author)
	if err != nil {
		return Quote{}, err
	}

	source := p.baseURL
	if len(r.Embedded.Source) > 0 && r.Embedded.Source[0].URL != "" {
		source = r.Embedded.Source[0].URL
	}
	q = q.WithSource(source).WithTags(append(r.Tags, p.SupportedTags()...)...)

	if r.AppearedAt != "" {
		if t, err := time.Parse(time.RFC3339, r.AppearedAt); err == nil {
			q = q.WithDate(t)
		}
	}
	return q, nil
}
