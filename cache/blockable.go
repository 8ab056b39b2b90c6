package cache

import (
	"github.com/verso-labs/quote-gateway/providers"
)

// Blockable decorates a Cache with a mutation gate. While blocked, the
// mutating calls (Put, PutAll, Remove, RemoveQuote, RemoveByTag, Clear)
// either error with ErrBlocked (strict mode) or silently no-op. Read
// operations always delegate, including Random with remove=true.
//
// Despite the name, preserve-state blocking does NOT snapshot the wrapped
// cache: Block clears it and callers are expected to repopulate after
// Unblock. This mirrors the behavior the gateway relies on for cache
// freezes; Unblock never repopulates on its own.
//
// Blockable wraps, it does not own, the inner cache; the inner cache's
// lifetime is the caller's responsibility. The gate flags are single-writer:
// drive Block/Unblock and SetPreserveState from one goroutine.
type Blockable struct {
	inner    Cache
	blocked  bool
	preserve bool
	strict   bool
}

// NewBlockable wraps inner. In strict mode a denied mutation errors with
// ErrBlocked instead of no-opping. Preserve-state starts disabled.
func NewBlockable(inner Cache, strict bool) *Blockable {
	return &Blockable{inner: inner, strict: strict}
}

// WithPreserveState enables clear-on-block (see the type comment).
func (b *Blockable) WithPreserveState(v bool) *Blockable {
	b.preserve = v
	return b
}

// Block closes the mutation gate. When preserve-state is enabled the inner
// cache is force-cleared so it is in a known-empty state while blocked.
func (b *Blockable) Block() {
	b.blocked = true
	if b.preserve {
		b.ForceClear()
	}
}

// Unblock reopens the mutation gate. No repopulation happens here.
func (b *Blockable) Unblock() {
	b.blocked = false
}

// Blocked reports whether the mutation gate is closed.
func (b *Blockable) Blocked() bool { return b.blocked }

// PreserveState reports the clear-on-block setting.
func (b *Blockable) PreserveState() bool { return b.preserve }

// SetPreserveState changes the clear-on-block setting. Turning it off while
// blocked applies the new policy eagerly by force-clearing immediately.
func (b *Blockable) SetPreserveState(v bool) {
	was := b.preserve
	b.preserve = v
	if was && !v && b.blocked {
		b.ForceClear()
	}
}

// ForceClear empties the inner cache regardless of the blocked state.
func (b *Blockable) ForceClear() {
	_ = b.inner.Clear()
}

// deny reports whether a mutation must be refused, and with what error.
func (b *Blockable) deny() (bool, error) {
	if !b.blocked {
		return false, nil
	}
	if b.strict {
		return true, ErrBlocked
	}
	return true, nil
}

// Put delegates unless blocked.
func (b *Blockable) Put(q providers.Quote, replace bool) (bool, error) {
	if denied, err := b.deny(); denied {
		return false, err
	}
	return b.inner.Put(q, replace)
}

// PutAll delegates unless blocked.
func (b *Blockable) PutAll(qs []providers.Quote, replace bool) (int, error) {
	if denied, err := b.deny(); denied {
		return 0, err
	}
	return b.inner.PutAll(qs, replace)
}

// Remove delegates unless blocked.
func (b *Blockable) Remove(id providers.ID) (providers.Quote, bool, error) {
	if denied, err := b.deny(); denied {
		return providers.Quote{}, false, err
	}
	return b.inner.Remove(id)
}

// RemoveQuote delegates unless blocked.
func (b *Blockable) RemoveQuote(q providers.Quote) (bool, error) {
	if denied, err := b.deny(); denied {
		return false, err
	}
	return b.inner.RemoveQuote(q)
}

// RemoveByTag delegates unless blocked.
func (b *Blockable) RemoveByTag(tag string) ([]providers.Quote, bool, error) {
	if denied, err := b.deny(); denied {
		return nil, false, err
	}
	return b.inner.RemoveByTag(tag)
}

// Clear delegates unless blocked. Use ForceClear to bypass the gate.
func (b *Blockable) Clear() error {
	if denied, err := b.deny(); denied {
		return err
	}
	return b.inner.Clear()
}

// Reads are never gated.

func (b *Blockable) All() []providers.Quote { return b.inner.All() }

func (b *Blockable) ByTag(tag string) ([]providers.Quote, error) { return b.inner.ByTag(tag) }

func (b *Blockable) ByTags(tags []string) []providers.Quote { return b.inner.ByTags(tags) }

func (b *Blockable) Contains(id providers.ID) bool { return b.inner.Contains(id) }

func (b *Blockable) ContainsQuote(q providers.Quote) bool { return b.inner.ContainsQuote(q) }

func (b *Blockable) Get(id providers.ID) (providers.Quote, error) { return b.inner.Get(id) }

func (b *Blockable) Lookup(id providers.ID) (providers.Quote, bool) { return b.inner.Lookup(id) }

func (b *Blockable) Random(remove bool) (providers.Quote, error) { return b.inner.Random(remove) }

func (b *Blockable) RandomByTag(tag string, remove bool) (providers.Quote, bool, error) {
	return b.inner.RandomByTag(tag, remove)
}

func (b *Blockable) Len() int { return b.inner.Len() }

func (b *Blockable) Empty() bool { return b.inner.Empty() }
