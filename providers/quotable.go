package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// QuotableProvider implements the Provider interface for quotable.io, a
// richly queryable quote database with author, tag, and free-text search.
type QuotableProvider struct {
	Base
	resolver *Resolver
}

// NewQuotable creates a new quotable.io provider. The API needs no key.
func NewQuotable(baseURL string) (*QuotableProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.quotable.io"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &QuotableProvider{
		Base:     Base{name: "quotable", baseURL: baseURL},
		resolver: NewResolver("quotable", baseURL),
	}, nil
}

// quotableQuote mirrors a single quote object in quotable responses.
type quotableQuote struct {
	ID         string   `json:"_id"`
	Content    string   `json:"content"`
	Author     string   `json:"author"`
	AuthorSlug string   `json:"authorSlug"`
	Tags       []string `json:"tags"`
	Length     int      `json:"length"`
	DateAdded  string   `json:"dateAdded"`
}

// quotableList mirrors the paginated list envelope of /quotes and
// /search/quotes.
type quotableList struct {
	Count      int             `json:"count"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Results    []quotableQuote `json:"results"`
}

// quotableTag mirrors a single entry of the /tags endpoint.
type quotableTag struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	QuoteCount int    `json:"quoteCount"`
}

// quotableDateLayout is the date-only format quotable uses for dateAdded.
const quotableDateLayout = "2006-01-02"

// Random fetches a single random quote.
func (p *QuotableProvider) Random(ctx context.Context) (Quote, error) {
	var resp quotableQuote
	found, err := p.resolver.GetJSON(ctx, "/random", &resp)
	if err != nil {
		return Quote{}, err
	}
	if !found {
		return Quote{}, ErrNoQuote
	}
	return p.convert(resp)
}

// Search queries /quotes with the given filters, or /search/quotes when a
// free-text query is set.
func (p *QuotableProvider) Search(ctx context.Context, q SearchQuery) ([]Quote, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	path := "/quotes"
	values := url.Values{}
	if q.Query != "" {
		path = "/search/quotes"
		values.Set("query", q.Query)
	}
	if q.Author != "" {
		values.Set("author", q.Author)
	}
	if len(q.Tags) > 0 {
		// quotable treats "|" as OR within the tags filter.
		values.Set("tags", strings.Join(q.Tags, "|"))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	var resp quotableList
	found, err := p.resolver.GetJSON(ctx, path+"?"+values.Encode(), &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	quotes := make([]Quote, 0, len(resp.Results))
	for _, r := range resp.Results {
		quote, err := p.convert(r)
		if err != nil {
			continue // skip malformed entries, keep the rest of the page
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// DiscoverTags enumerates the live tag vocabulary from /tags.
func (p *QuotableProvider) DiscoverTags(ctx context.Context) ([]TagInfo, error) {
	var resp []quotableTag
	found, err := p.resolver.GetJSON(ctx, "/tags", &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	tags := make([]TagInfo, 0, len(resp))
	for _, t := range resp {
		tags = append(tags, TagInfo{Name: t.Slug, Count: t.QuoteCount, Source: p.name})
	}
	return tags, nil
}

// SupportedTags returns the static list of well-known quotable tags used for
// routing. The live vocabulary is larger; see DiscoverTags.
func (p *QuotableProvider) SupportedTags() []string {
	return []string{
		"famous-quotes",
		"wisdom",
		"inspirational",
		"life",
		"happiness",
		"success",
		"technology",
		"friendship",
	}
}

// SupportsTag returns true for any non-blank tag: quotable is the
// general-purpose database and accepts arbitrary tag filters.
func (p *QuotableProvider) SupportsTag(tag string) bool {
	return strings.TrimSpace(tag) != ""
}

// convert maps a wire quote into the common representation.
func (p *QuotableProvider) convert(r quotableQuote) (Quote, error) {
	id, err := ParseID(r.ID)
	if err != nil {
		return Quote{}, err
	}
	q, err := NewQuote(id, r.Content, r.Author)
	if err != nil {
		return Quote{}, err
	}
	q = q.WithSource(p.baseURL).WithTags(r.Tags...)
	if r.DateAdded != "" {
		if t, err := time.Parse(quotableDateLayout, r.DateAdded); err == nil {
			q = q.WithDate(t)
		}
	}
	return q, nil
}
