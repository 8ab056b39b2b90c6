package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/verso-labs/quote-gateway/providers"
)

// mockProvider is a configurable Provider for strategy tests.
type mockProvider struct {
	name    string
	tags    []string
	quote   providers.Quote
	err     error
	failN   int // fail the first N calls, then succeed
	calls   int
	results []providers.Quote // returned by Search when set
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Random(_ context.Context) (providers.Quote, error) {
	m.calls++
	if m.err != nil && (m.failN == 0 || m.calls <= m.failN) {
		return providers.Quote{}, m.err
	}
	return m.quote, nil
}

func (m *mockProvider) SupportedTags() []string { return m.tags }

func (m *mockProvider) SupportsTag(tag string) bool {
	for _, t := range m.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// mockSearchProvider adds the Search capability on top of mockProvider.
type mockSearchProvider struct {
	mockProvider
}

func (m *mockSearchProvider) Search(_ context.Context, _ providers.SearchQuery) ([]providers.Quote, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func mustQuote(t *testing.T, id, text string, tags ...string) providers.Quote {
	t.Helper()
	q, err := providers.NewQuote(providers.ID(id), text, "Test Author")
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}
	return q.WithTags(tags...)
}

func newLookup(ps ...providers.Provider) ProviderLookup {
	byName := make(map[string]providers.Provider, len(ps))
	for _, p := range ps {
		byName[p.Name()] = p
	}
	return func(name string) (providers.Provider, bool) {
		p, ok := byName[name]
		return p, ok
	}
}

func TestSingle_Execute(t *testing.T) {
	q := mustQuote(t, "q1", "hello", "wisdom")
	p := &mockProvider{name: "alpha", tags: []string{"wisdom"}, quote: q}
	s := NewSingle(Target{Provider: "alpha"}, newLookup(p))

	got, err := s.Execute(context.Background(), providers.FetchRequest{Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "q1" {
		t.Errorf("Execute() = %v, want [q1]", got)
	}
}

func TestSingle_ProviderNotFound(t *testing.T) {
	s := NewSingle(Target{Provider: "missing"}, newLookup())
	if _, err := s.Execute(context.Background(), providers.FetchRequest{Count: 1}); err == nil {
		t.Fatal("Execute() = nil error, want provider-not-found")
	}
}

func TestSingle_UnsupportedTag(t *testing.T) {
	p := &mockProvider{name: "alpha", tags: []string{"wisdom"}}
	s := NewSingle(Target{Provider: "alpha"}, newLookup(p))

	if _, err := s.Execute(context.Background(), providers.FetchRequest{Tag: "humor", Count: 1}); err == nil {
		t.Fatal("Execute() = nil error for unsupported tag")
	}
}

func TestSingle_CountIssuesRepeatedCalls(t *testing.T) {
	q := mustQuote(t, "q1", "hello")
	p := &mockProvider{name: "alpha", quote: q}
	s := NewSingle(Target{Provider: "alpha"}, newLookup(p))

	got, err := s.Execute(context.Background(), providers.FetchRequest{Count: 3})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Execute() returned %d quotes, want 3", len(got))
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3", p.calls)
	}
}

func TestSingle_SearchProviderUsedForTagFilter(t *testing.T) {
	q := mustQuote(t, "q1", "tagged", "wisdom")
	p := &mockSearchProvider{mockProvider: mockProvider{
		name: "alpha", tags: []string{"wisdom"}, results: []providers.Quote{q},
	}}
	s := NewSingle(Target{Provider: "alpha"}, newLookup(p))

	got, err := s.Execute(context.Background(), providers.FetchRequest{Tag: "wisdom", Count: 5})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "q1" {
		t.Errorf("Execute() = %v, want search result [q1]", got)
	}
	if p.calls != 1 {
		t.Errorf("provider called %d times, want 1 (single search, not repeated Random)", p.calls)
	}
}

func TestFallback_FirstSucceeds(t *testing.T) {
	q := mustQuote(t, "q1", "primary")
	primary := &mockProvider{name: "alpha", quote: q}
	backup := &mockProvider{name: "beta", quote: mustQuote(t, "q2", "backup")}
	f := NewFallback([]Target{{Provider: "alpha"}, {Provider: "beta"}}, newLookup(primary, backup))

	got, err := f.Execute(context.Background(), providers.FetchRequest{Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "q1" {
		t.Errorf("Execute() served %s, want q1 from primary", got[0].ID)
	}
	if backup.calls != 0 {
		t.Error("backup provider called although primary succeeded")
	}
}

func TestFallback_FailsOver(t *testing.T) {
	primary := &mockProvider{name: "alpha", err: errors.New("upstream down")}
	backup := &mockProvider{name: "beta", quote: mustQuote(t, "q2", "backup")}
	f := NewFallback([]Target{{Provider: "alpha"}, {Provider: "beta"}}, newLookup(primary, backup))

	got, err := f.Execute(context.Background(), providers.FetchRequest{Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "q2" {
		t.Errorf("Execute() served %s, want q2 from backup", got[0].ID)
	}
}

func TestFallback_RetriesBeforeFailingOver(t *testing.T) {
	q := mustQuote(t, "q1", "eventually")
	flaky := &mockProvider{name: "alpha", quote: q, err: errors.New("transient"), failN: 1}
	f := NewFallback([]Target{{Provider: "alpha"}}, newLookup(flaky)).WithMaxRetries(2)

	got, err := f.Execute(context.Background(), providers.FetchRequest{Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "q1" {
		t.Errorf("Execute() served %s, want q1 after retry", got[0].ID)
	}
	if flaky.calls != 2 {
		t.Errorf("provider called %d times, want 2", flaky.calls)
	}
}

func TestFallback_AllFail(t *testing.T) {
	a := &mockProvider{name: "alpha", err: errors.New("down")}
	b := &mockProvider{name: "beta", err: errors.New("also down")}
	f := NewFallback([]Target{{Provider: "alpha"}, {Provider: "beta"}}, newLookup(a, b))

	if _, err := f.Execute(context.Background(), providers.FetchRequest{Count: 1}); err == nil {
		t.Fatal("Execute() = nil error, want all-providers-failed")
	}
}

func TestFallback_SkipsUnsupportedTag(t *testing.T) {
	music := &mockProvider{name: "alpha", tags: []string{"music"}, quote: mustQuote(t, "q1", "song")}
	politics := &mockProvider{name: "beta", tags: []string{"politics"}, quote: mustQuote(t, "q2", "speech", "politics")}
	f := NewFallback([]Target{{Provider: "alpha"}, {Provider: "beta"}}, newLookup(music, politics))

	got, err := f.Execute(context.Background(), providers.FetchRequest{Tag: "politics", Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "q2" {
		t.Errorf("Execute() served %s, want q2", got[0].ID)
	}
	if music.calls != 0 {
		t.Error("provider without the tag was called")
	}
}

func TestFallback_NoTargets(t *testing.T) {
	f := NewFallback(nil, newLookup())
	if _, err := f.Execute(context.Background(), providers.FetchRequest{Count: 1}); err == nil {
		t.Fatal("Execute() = nil error with no targets")
	}
}

func TestLoadBalance_Distributes(t *testing.T) {
	a := &mockProvider{name: "alpha", quote: mustQuote(t, "qa", "from a")}
	b := &mockProvider{name: "beta", quote: mustQuote(t, "qb", "from b")}
	lb := NewLoadBalance([]Target{
		{Provider: "alpha", Weight: 1},
		{Provider: "beta", Weight: 1},
	}, newLookup(a, b), 42)

	for i := 0; i < 100; i++ {
		if _, err := lb.Execute(context.Background(), providers.FetchRequest{Count: 1}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if a.calls == 0 || b.calls == 0 {
		t.Errorf("distribution = alpha:%d beta:%d, want both > 0", a.calls, b.calls)
	}
}

func TestLoadBalance_RespectsWeights(t *testing.T) {
	heavy := &mockProvider{name: "alpha", quote: mustQuote(t, "qa", "from a")}
	light := &mockProvider{name: "beta", quote: mustQuote(t, "qb", "from b")}
	lb := NewLoadBalance([]Target{
		{Provider: "alpha", Weight: 9},
		{Provider: "beta", Weight: 1},
	}, newLookup(heavy, light), 42)

	for i := 0; i < 200; i++ {
		if _, err := lb.Execute(context.Background(), providers.FetchRequest{Count: 1}); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if heavy.calls <= light.calls {
		t.Errorf("distribution = heavy:%d light:%d, want heavy > light", heavy.calls, light.calls)
	}
}

func TestLoadBalance_ZeroWeightCountsAsOne(t *testing.T) {
	a := &mockProvider{name: "alpha", quote: mustQuote(t, "qa", "from a")}
	lb := NewLoadBalance([]Target{{Provider: "alpha", Weight: 0}}, newLookup(a), 1)

	if _, err := lb.Execute(context.Background(), providers.FetchRequest{Count: 1}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestLoadBalance_FiltersByTag(t *testing.T) {
	music := &mockProvider{name: "alpha", tags: []string{"music"}, quote: mustQuote(t, "qa", "song")}
	politics := &mockProvider{name: "beta", tags: []string{"politics"}, quote: mustQuote(t, "qb", "speech", "politics")}
	lb := NewLoadBalance([]Target{
		{Provider: "alpha", Weight: 1},
		{Provider: "beta", Weight: 1},
	}, newLookup(music, politics), 42)

	for i := 0; i < 20; i++ {
		got, err := lb.Execute(context.Background(), providers.FetchRequest{Tag: "politics", Count: 1})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got[0].ID != "qb" {
			t.Fatalf("Execute() served %s, want qb only", got[0].ID)
		}
	}
}

func TestLoadBalance_NoEligibleTargets(t *testing.T) {
	music := &mockProvider{name: "alpha", tags: []string{"music"}}
	lb := NewLoadBalance([]Target{{Provider: "alpha", Weight: 1}}, newLookup(music), 1)

	if _, err := lb.Execute(context.Background(), providers.FetchRequest{Tag: "politics", Count: 1}); err == nil {
		t.Fatal("Execute() = nil error with no eligible targets")
	}
}

func TestConditional_RuleRouting(t *testing.T) {
	music := &mockProvider{name: "alpha", tags: []string{"music"}, quote: mustQuote(t, "qa", "song", "music")}
	fallback := &mockProvider{name: "beta", quote: mustQuote(t, "qb", "default")}
	c := NewConditional(
		[]Rule{{Key: "tag", Value: "music", Target: Target{Provider: "alpha"}}},
		Target{Provider: "beta"},
		newLookup(music, fallback),
	)

	got, err := c.Execute(context.Background(), providers.FetchRequest{Tag: "music", Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "qa" {
		t.Errorf("Execute() served %s, want qa via tag rule", got[0].ID)
	}
}

func TestConditional_FallsThroughToDefault(t *testing.T) {
	music := &mockProvider{name: "alpha", tags: []string{"music"}}
	fallback := &mockProvider{name: "beta", quote: mustQuote(t, "qb", "default")}
	c := NewConditional(
		[]Rule{{Key: "tag", Value: "music", Target: Target{Provider: "alpha"}}},
		Target{Provider: "beta"},
		newLookup(music, fallback),
	)

	got, err := c.Execute(context.Background(), providers.FetchRequest{Count: 1})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got[0].ID != "qb" {
		t.Errorf("Execute() served %s, want qb via default", got[0].ID)
	}
}

func TestConditional_TagPrefixAndAuthorRules(t *testing.T) {
	a := &mockProvider{name: "alpha", tags: []string{"tech-go"}, quote: mustQuote(t, "qa", "go", "tech-go")}
	b := &mockProvider{name: "beta", quote: mustQuote(t, "qb", "by author")}
	c := NewConditional(
		[]Rule{
			{Key: "tag_prefix", Value: "tech-", Target: Target{Provider: "alpha"}},
			{Key: "author", Value: "kanye west", Target: Target{Provider: "beta"}},
		},
		Target{},
		newLookup(a, b),
	)

	got, err := c.Execute(context.Background(), providers.FetchRequest{Tag: "tech-go", Count: 1})
	if err != nil {
		t.Fatalf("Execute(tag_prefix) error = %v", err)
	}
	if got[0].ID != "qa" {
		t.Errorf("Execute(tag_prefix) served %s, want qa", got[0].ID)
	}

	got, err = c.Execute(context.Background(), providers.FetchRequest{Author: "Kanye West", Count: 1})
	if err != nil {
		t.Fatalf("Execute(author) error = %v", err)
	}
	if got[0].ID != "qb" {
		t.Errorf("Execute(author) served %s, want qb", got[0].ID)
	}
}

func TestConditional_NoMatchNoDefault(t *testing.T) {
	c := NewConditional(nil, Target{}, newLookup())
	if _, err := c.Execute(context.Background(), providers.FetchRequest{Count: 1}); err == nil {
		t.Fatal("Execute() = nil error with no rules and no default")
	}
}
