package cache

import (
	"strings"

	"github.com/verso-labs/quote-gateway/providers"
)

// tagIndex maps each tag to the set of quote ids currently tagged with it.
// It is derived state, kept in sync with the primary store by Memory under
// its lock, and never authoritative on its own.
type tagIndex map[string]map[providers.ID]struct{}

// add inserts id into the bucket of every non-blank tag, creating buckets as
// needed.
func (ti tagIndex) add(id providers.ID, tags []string) {
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		bucket, ok := ti[tag]
		if !ok {
			bucket = make(map[providers.ID]struct{})
			ti[tag] = bucket
		}
		bucket[id] = struct{}{}
	}
}

// remove deletes id from the bucket of every given tag, dropping buckets
// that become empty so the index never accumulates dead entries.
func (ti tagIndex) remove(id providers.ID, tags []string) {
	for _, tag := range tags {
		bucket, ok := ti[tag]
		if !ok {
			continue
		}
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(ti, tag)
		}
	}
}

// lookup returns the id set for an exact tag match. An unknown tag yields a
// nil (empty) set, not an error.
func (ti tagIndex) lookup(tag string) map[providers.ID]struct{} {
	return ti[tag]
}

// lookupAny returns the union of lookup over the given tags. Blank entries
// are skipped; a nil or empty input yields an empty set.
func (ti tagIndex) lookupAny(tags []string) map[providers.ID]struct{} {
	union := make(map[providers.ID]struct{})
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		for id := range ti[tag] {
			union[id] = struct{}{}
		}
	}
	return union
}
