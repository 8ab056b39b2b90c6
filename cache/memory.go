package cache

import (
	"fmt"
	"strings"
	"sync"

	"github.com/verso-labs/quote-gateway/providers"
)

// Memory is a thread-safe in-memory quote cache with tag indexing and
// uniform random selection. One mutex guards the primary store and the tag
// index together, so every operation is a single critical section.
type Memory struct {
	mu     sync.Mutex
	quotes map[providers.ID]providers.Quote
	index  tagIndex
	rand   Rand
	equal  EqualFunc
}

// NewMemory creates an empty cache with math/rand selection and structural
// equality. Entries live until explicitly removed; there is no background
// eviction.
func NewMemory() *Memory {
	return &Memory{
		quotes: make(map[providers.ID]providers.Quote),
		index:  make(tagIndex),
		rand:   stdRand{},
		equal:  DefaultEqual,
	}
}

// WithRand sets the random source used for selection.
func (m *Memory) WithRand(r Rand) *Memory {
	m.rand = r
	return m
}

// WithEqual sets the equality comparer used by the quote-valued
// Contains/Remove variants.
func (m *Memory) WithEqual(eq EqualFunc) *Memory {
	m.equal = eq
	return m
}

// Put stores a quote, replacing an existing entry with the same id only when
// replace is true.
func (m *Memory) Put(q providers.Quote, replace bool) (bool, error) {
	if q.IsZero() {
		return false, fmt.Errorf("%w: quote is the zero value", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.quotes[q.ID]; exists {
		if !replace {
			return false, nil
		}
		m.index.remove(old.ID, old.Tags)
	}
	m.quotes[q.ID] = q
	m.index.add(q.ID, q.Tags)
	return true, nil
}

// PutAll stores a batch of quotes, skipping zero quotes and duplicates per
// Put semantics. It returns how many were actually stored.
func (m *Memory) PutAll(qs []providers.Quote, replace bool) (int, error) {
	if qs == nil {
		return 0, fmt.Errorf("%w: quotes sequence is nil", ErrInvalidArgument)
	}

	stored := 0
	for _, q := range qs {
		if q.IsZero() {
			continue
		}
		ok, err := m.Put(q, replace)
		if err != nil {
			continue
		}
		if ok {
			stored++
		}
	}
	return stored, nil
}

// All returns every cached quote as a point-in-time snapshot.
func (m *Memory) All() []providers.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]providers.Quote, 0, len(m.quotes))
	for _, q := range m.quotes {
		out = append(out, q)
	}
	return out
}

// ByTag returns the quotes in the tag's bucket. An unknown tag yields an
// empty result.
func (m *Memory) ByTag(tag string) ([]providers.Quote, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("%w: tag must not be blank", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(m.index.lookup(tag)), nil
}

// ByTags returns the union over all given tags, deduplicated by id.
func (m *Memory) ByTags(tags []string) []providers.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(m.index.lookupAny(tags))
}

// Contains reports whether a quote with the given id is cached.
func (m *Memory) Contains(id providers.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.quotes[id]
	return ok
}

// ContainsQuote reports whether this exact quote is cached: the stored entry
// under the same id must also compare equal.
func (m *Memory) ContainsQuote(q providers.Quote) bool {
	if q.IsZero() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.quotes[q.ID]
	return ok && m.equal(stored, q)
}

// Get returns the quote stored under id. It errors with ErrEmpty on an empty
// cache and ErrNotFound for an unknown id.
func (m *Memory) Get(id providers.ID) (providers.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.quotes) == 0 {
		return providers.Quote{}, ErrEmpty
	}
	q, ok := m.quotes[id]
	if !ok {
		return providers.Quote{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return q, nil
}

// Lookup is the non-erroring variant of Get.
func (m *Memory) Lookup(id providers.ID) (providers.Quote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	return q, ok
}

// Random selects uniformly among all cached quotes. Emptiness is checked
// under the lock, so there is no gap between the check and the selection.
func (m *Memory) Random(remove bool) (providers.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.quotes) == 0 {
		return providers.Quote{}, ErrEmpty
	}

	ids := make([]providers.ID, 0, len(m.quotes))
	for id := range m.quotes {
		ids = append(ids, id)
	}
	q := m.quotes[ids[m.rand.IntN(0, len(ids))]]
	if remove {
		m.removeLocked(q)
	}
	return q, nil
}

// RandomByTag selects uniformly within one tag bucket. An unknown or empty
// bucket reports found=false.
func (m *Memory) RandomByTag(tag string, remove bool) (providers.Quote, bool, error) {
	if strings.TrimSpace(tag) == "" {
		return providers.Quote{}, false, fmt.Errorf("%w: tag must not be blank", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.index.lookup(tag)
	if len(bucket) == 0 {
		return providers.Quote{}, false, nil
	}

	ids := make([]providers.ID, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	q := m.quotes[ids[m.rand.IntN(0, len(ids))]]
	if remove {
		m.removeLocked(q)
	}
	return q, true, nil
}

// Remove deletes the quote stored under id, returning it when found.
func (m *Memory) Remove(id providers.ID) (providers.Quote, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quotes[id]
	if !ok {
		return providers.Quote{}, false, nil
	}
	m.removeLocked(q)
	return q, true, nil
}

// RemoveQuote deletes a cached entry matching q by both id and the equality
// comparer.
func (m *Memory) RemoveQuote(q providers.Quote) (bool, error) {
	if q.IsZero() {
		return false, fmt.Errorf("%w: quote is the zero value", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.quotes[q.ID]
	if !ok || !m.equal(stored, q) {
		return false, nil
	}
	m.removeLocked(stored)
	return true, nil
}

// RemoveByTag deletes every quote in the tag's bucket, cleaning their ids
// out of every other bucket they participate in.
func (m *Memory) RemoveByTag(tag string) ([]providers.Quote, bool, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, false, fmt.Errorf("%w: tag must not be blank", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.index.lookup(tag)
	if len(bucket) == 0 {
		return nil, false, nil
	}

	removed := make([]providers.Quote, 0, len(bucket))
	for id := range bucket {
		removed = append(removed, m.quotes[id])
	}
	for _, q := range removed {
		m.removeLocked(q)
	}
	return removed, true, nil
}

// Clear empties both the store and the tag index.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = make(map[providers.ID]providers.Quote)
	m.index = make(tagIndex)
	return nil
}

// Len returns the number of cached quotes.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quotes)
}

// Empty reports whether the cache holds no quotes.
func (m *Memory) Empty() bool {
	return m.Len() == 0
}

// removeLocked deletes q from the store and the index. Caller holds m.mu.
func (m *Memory) removeLocked(q providers.Quote) {
	delete(m.quotes, q.ID)
	m.index.remove(q.ID, q.Tags)
}

// collect resolves an id set into quotes. Caller holds m.mu.
func (m *Memory) collect(ids map[providers.ID]struct{}) []providers.Quote {
	out := make([]providers.Quote, 0, len(ids))
	for id := range ids {
		if q, ok := m.quotes[id]; ok {
			out = append(out, q)
		}
	}
	return out
}
