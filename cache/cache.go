// Package cache implements the tagged in-memory quote cache used by the
// gateway: a primary store keyed by quote id with a secondary tag index for
// bucket lookups, uniform random selection, and a Blockable decorator that
// can gate mutation of any Cache implementation.
//
// The default implementation is Memory. All operations are synchronous and
// in-memory; a single mutex guards the store and the tag index together so
// readers never observe the two out of sync.
package cache

import (
	"errors"
	"math/rand"

	"github.com/verso-labs/quote-gateway/providers"
)

// Sentinel errors returned by Cache implementations. Callers distinguish
// them with errors.Is.
var (
	// ErrInvalidArgument is returned for zero quotes, nil sequences, and
	// blank tags or ids, always before any mutation takes place.
	ErrInvalidArgument = errors.New("cache: invalid argument")

	// ErrNotFound is returned by Get for an id the cache has quotes but not
	// this one. Lookup is the non-erroring variant.
	ErrNotFound = errors.New("cache: quote not found")

	// ErrEmpty is returned by Get and Random on a cache with no quotes at
	// all, as distinct from ErrNotFound.
	ErrEmpty = errors.New("cache: cache is empty")

	// ErrBlocked is returned by mutating calls on a strict Blockable while
	// it is blocked.
	ErrBlocked = errors.New("cache: blocked cache cannot be modified")
)

// Rand supplies uniformly distributed integers in the half-open interval
// [min, max). Implementations are used only for index selection.
type Rand interface {
	IntN(min, max int) int
}

// stdRand adapts math/rand to the Rand interface.
type stdRand struct{}

func (stdRand) IntN(min, max int) int {
	return min + rand.Intn(max-min) //nolint:gosec
}

// EqualFunc compares two quotes for duplicate detection. It is used only by
// the quote-valued Contains/Remove variants, never for identity: identity is
// always id comparison.
type EqualFunc func(a, b providers.Quote) bool

// DefaultEqual is full structural equality.
func DefaultEqual(a, b providers.Quote) bool { return a.Equal(b) }

// Cache is the capability set implemented by any conforming quote cache.
//
// Throwing and non-throwing variants pair up the way the rest of the module
// does: Get/Random error when the caller asserts success, Lookup and the
// ByTag(s) queries report "no result" without erroring.
type Cache interface {
	// Put stores a quote. When a quote with the same id exists it returns
	// false and changes nothing unless replace is true, in which case the
	// old entry (and its tag-index memberships) is replaced.
	Put(q providers.Quote, replace bool) (bool, error)
	// PutAll stores a batch, skipping zero quotes and per-item failures.
	// It returns the number of quotes actually stored. The batch is not
	// atomic, but no item can leave the index inconsistent with the store.
	PutAll(qs []providers.Quote, replace bool) (int, error)

	All() []providers.Quote
	ByTag(tag string) ([]providers.Quote, error)
	// ByTags returns the union over all given tags, deduplicated by id.
	// Blank entries are skipped; a nil or empty input yields an empty
	// result (no tags means nothing matches, not "no filter").
	ByTags(tags []string) []providers.Quote

	Contains(id providers.ID) bool
	// ContainsQuote matches by id membership and the equality comparer:
	// an equal-but-differently-id'd quote is not cached.
	ContainsQuote(q providers.Quote) bool

	Get(id providers.ID) (providers.Quote, error)
	Lookup(id providers.ID) (providers.Quote, bool)

	// Random selects uniformly among all cached quotes, removing the
	// selection from the cache first when remove is true.
	Random(remove bool) (providers.Quote, error)
	// RandomByTag selects uniformly within one tag bucket. An unknown or
	// empty bucket reports found=false without erroring.
	RandomByTag(tag string, remove bool) (providers.Quote, bool, error)

	Remove(id providers.ID) (providers.Quote, bool, error)
	RemoveQuote(q providers.Quote) (bool, error)
	// RemoveByTag removes every quote in the tag's bucket, cleaning their
	// ids out of every other bucket they participate in.
	RemoveByTag(tag string) ([]providers.Quote, bool, error)

	Clear() error
	Len() int
	Empty() bool
}
