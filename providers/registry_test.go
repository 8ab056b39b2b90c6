package providers

import (
	"context"
	"testing"
)

// stubProvider is a minimal Provider for registry tests.
type stubProvider struct {
	name string
	tags []string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Random(_ context.Context) (Quote, error) {
	return Quote{}, ErrNoQuote
}
func (s *stubProvider) SupportedTags() []string { return s.tags }
func (s *stubProvider) SupportsTag(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "kanye"})

	p, ok := r.Get("kanye")
	if !ok || p.Name() != "kanye" {
		t.Errorf("Get(kanye) = (%v, %v), want registered provider", p, ok)
	}
	if _, ok := r.Get("ghost"); ok {
		t.Error("Get(ghost) = true for unregistered provider")
	}
}

func TestRegistry_MustGet_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGet did not panic for unknown provider")
		}
	}()
	NewRegistry().MustGet("ghost")
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "a"})
	r.Register(&stubProvider{name: "b"})

	if got := r.List(); len(got) != 2 {
		t.Errorf("List() = %v, want 2 names", got)
	}
}

func TestRegistry_AllTags_Dedup(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "a", tags: []string{"wisdom", "music"}})
	r.Register(&stubProvider{name: "b", tags: []string{"wisdom", "politics"}})

	tags := r.AllTags()
	seen := make(map[string]int)
	for _, tag := range tags {
		seen[tag.Name]++
	}
	if seen["wisdom"] != 1 {
		t.Errorf("AllTags() contains wisdom %d times, want 1", seen["wisdom"])
	}
	if len(tags) != 3 {
		t.Errorf("AllTags() = %d tags, want 3", len(tags))
	}
}

func TestRegistry_FindByTag(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "a", tags: []string{"music"}})

	p, ok := r.FindByTag("music")
	if !ok || p.Name() != "a" {
		t.Errorf("FindByTag(music) = (%v, %v), want provider a", p, ok)
	}
	if _, ok := r.FindByTag("cooking"); ok {
		t.Error("FindByTag(cooking) = true, want false")
	}
}
