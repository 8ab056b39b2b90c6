// Package providers defines the Provider interface and shared data types
// used across all quote provider implementations.
//
// The Provider interface must be implemented by any upstream quote API that
// integrates with the gateway. SearchProvider, TagDiscoveryProvider, and
// ImageProvider extend Provider for backends that support those operations.
//
// Core types: Quote, ID, FetchRequest, SearchQuery, TagInfo.
package providers

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// Provider defines the interface that all quote providers must implement.
type Provider interface {
	Name() string
	Random(ctx context.Context) (Quote, error)
	SupportedTags() []string
	SupportsTag(tag string) bool
}

// SearchProvider is an optional interface for providers whose API can be
// queried by author, tag, or free text.
type SearchProvider interface {
	Provider
	Search(ctx context.Context, q SearchQuery) ([]Quote, error)
}

// TagDiscoveryProvider is an optional interface for providers that can
// enumerate their tag vocabulary live from the provider API.
type TagDiscoveryProvider interface {
	Provider
	DiscoverTags(ctx context.Context) ([]TagInfo, error)
}

// ImageProvider is an optional interface for providers that can render a
// quote as an image (e.g. the Tronald Dump meme endpoint).
type ImageProvider interface {
	Provider
	// QuoteImage returns the raw image bytes for the quote with the given id.
	QuoteImage(ctx context.Context, id ID) ([]byte, error)
}

// ----------------------------------------------------------------------- ID --

// ID identifies a quote within a provider and within a cache instance.
type ID string

// ParseID validates and normalises a raw identifier string.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("quote id must not be blank")
	}
	return ID(s), nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// DeriveID builds a stable id from quote text for providers whose API does
// not return one (e.g. kanye.rest).
func DeriveID(text string) ID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return ID(hex.EncodeToString(h.Sum(nil)))
}

// -------------------------------------------------------------------- Quote --

// Quote is the common representation every provider converts into.
// It is an immutable value: construct with NewQuote, derive variants with
// the With* methods. The zero Quote is invalid.
type Quote struct {
	ID     ID
	Text   string
	Author string
	Date   time.Time // zero when the provider carries no date
	Source string
	Tags   []string // order preserved for display; irrelevant for querying
}

// NewQuote validates and constructs a Quote. A partially-valid Quote never
// escapes this constructor.
func NewQuote(id ID, text, author string) (Quote, error) {
	if strings.TrimSpace(string(id)) == "" {
		return Quote{}, errors.New("quote id must not be blank")
	}
	if strings.TrimSpace(text) == "" {
		return Quote{}, errors.New("quote text must not be blank")
	}
	if strings.TrimSpace(author) == "" {
		return Quote{}, errors.New("quote author must not be blank")
	}
	return Quote{ID: id, Text: text, Author: author}, nil
}

// WithDate returns a copy of the quote with the given date.
func (q Quote) WithDate(t time.Time) Quote {
	q.Date = t
	return q
}

// WithSource returns a copy of the quote with the given source.
func (q Quote) WithSource(s string) Quote {
	q.Source = s
	return q
}

// WithTags returns a copy of the quote with the given tags. Blank tags are
// dropped so downstream tag indexing never sees them.
func (q Quote) WithTags(tags ...string) Quote {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			cleaned = append(cleaned, t)
		}
	}
	q.Tags = cleaned
	return q
}

// IsZero reports whether the quote is the invalid zero value.
func (q Quote) IsZero() bool { return q.ID == "" }

// Equal reports full structural equality. Identity comparison is done on the
// ID field alone; Equal is the stricter duplicate-detection check.
func (q Quote) Equal(o Quote) bool {
	if q.ID != o.ID || q.Text != o.Text || q.Author != o.Author ||
		q.Source != o.Source || !q.Date.Equal(o.Date) || len(q.Tags) != len(o.Tags) {
		return false
	}
	for i := range q.Tags {
		if q.Tags[i] != o.Tags[i] {
			return false
		}
	}
	return true
}

// ------------------------------------------------------------ FetchRequest --

// FetchRequest describes a routed quote fetch handled by the gateway's
// strategy layer.
type FetchRequest struct {
	// Tag restricts the fetch to providers supporting the tag. Empty means
	// any provider.
	Tag string `json:"tag,omitempty"`
	// Author restricts the fetch to a single author where the selected
	// provider supports author search.
	Author string `json:"author,omitempty"`
	// Count is the number of quotes requested.
	Count int `json:"count"`
}

// Validate returns an error if the request contains out-of-range values.
func (r FetchRequest) Validate() error {
	if r.Count < 1 {
		return errors.New("count must be at least 1")
	}
	if r.Count > 100 {
		return errors.New("count must not exceed 100")
	}
	return nil
}

// ------------------------------------------------------------- SearchQuery --

// SearchQuery holds the filters accepted by SearchProvider implementations.
// Zero-value fields are omitted from the upstream query string.
type SearchQuery struct {
	Query  string   `json:"query,omitempty"`
	Author string   `json:"author,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Limit  int      `json:"limit,omitempty"` // 0 = provider default
	Page   int      `json:"page,omitempty"`  // 0 = first page
}

// Validate returns an error if the query contains out-of-range values.
func (q SearchQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	if q.Limit > 150 {
		return errors.New("limit must not exceed 150")
	}
	if q.Page < 0 {
		return errors.New("page must not be negative")
	}
	if q.Query == "" && q.Author == "" && len(q.Tags) == 0 {
		return errors.New("at least one of query, author, or tags is required")
	}
	return nil
}

// IsEmpty reports whether no filter is set at all.
func (q SearchQuery) IsEmpty() bool {
	return q.Query == "" && q.Author == "" && len(q.Tags) == 0
}

// ----------------------------------------------------------------- TagInfo --

// TagInfo describes a single tag offered by a provider.
type TagInfo struct {
	Name   string `json:"name"`
	Count  int    `json:"count,omitempty"` // quotes carrying the tag, 0 if unknown
	Source string `json:"source,omitempty"`
}

// ErrNoQuote is returned by providers when the upstream API answered
// successfully but carried no quote (e.g. an empty search result treated as
// a direct lookup).
var ErrNoQuote = errors.New("provider returned no quote")

// apiError formats an upstream failure uniformly across providers.
func apiError(provider string, status int, body string) error {
	return fmt.Errorf("%s API error (%d): %s", provider, status, body)
}
