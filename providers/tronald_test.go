package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const tronaldQuoteFixture = `{
	"quote_id": "tr1",
	"value": "We will have so much winning.",
	"appeared_at": "2015-06-16T14:30:00Z",
	"tags": ["winning"],
	"_embedded": {
		"author": [{"name": "Donald J. Trump"}],
		"source": [{"url": "https://example.com/speech"}]
	}
}`

func TestTronald_Random(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/random/quote" {
			t.Errorf("path = %q, want /random/quote", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/hal+json" {
			t.Errorf("Accept header = %q, want application/hal+json", got)
		}
		_, _ = w.Write([]byte(tronaldQuoteFixture))
	}))
	defer server.Close()

	p, err := NewTronald(server.URL)
	if err != nil {
		t.Fatalf("NewTronald: %v", err)
	}

	q, err := p.Random(context.Background())
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if q.ID != "tr1" {
		t.Errorf("id = %q, want tr1", q.ID)
	}
	if q.Author != "Donald J. Trump" {
		t.Errorf("author = %q, want embedded author", q.Author)
	}
	if q.Source != "https://example.com/speech" {
		t.Errorf("source = %q, want embedded source url", q.Source)
	}
	wantDate := time.Date(2015, 6, 16, 14, 30, 0, 0, time.UTC)
	if !q.Date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", q.Date, wantDate)
	}
	// Upstream topic tags plus the provider routing tags.
	want := map[string]bool{"winning": true, "politics": true, "trump": true}
	if len(q.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", q.Tags, want)
	}
	for _, tag := range q.Tags {
		if !want[tag] {
			t.Errorf("unexpected tag %q", tag)
		}
	}
}

func TestTronald_Random_MissingAuthorDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quote_id": "tr2", "value": "Believe me.", "_embedded": {}}`))
	}))
	defer server.Close()

	p, _ := NewTronald(server.URL)
	q, err := p.Random(context.Background())
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if q.Author != "Donald Trump" {
		t.Errorf("author = %q, want default", q.Author)
	}
}

func TestTronald_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/quote" {
			t.Errorf("path = %q, want /search/quote", r.URL.Path)
		}
		values := r.URL.Query()
		if got := values.Get("tag"); got != "winning" {
			t.Errorf("tag param = %q, want winning", got)
		}
		// Caller pages are one-based, upstream pages are zero-based.
		if got := values.Get("page"); got != "1" {
			t.Errorf("page param = %q, want 1", got)
		}
		_, _ = w.Write([]byte(`{
			"count": 2, "total": 2,
			"_embedded": {"quotes": [
				{"quote_id": "a", "value": "First.", "_embedded": {}},
				{"quote_id": "b", "value": "Second.", "_embedded": {}}
			]}
		}`))
	}))
	defer server.Close()

	p, _ := NewTronald(server.URL)
	quotes, err := p.Search(context.Background(), SearchQuery{
		Tags:  []string{"winning"},
		Limit: 1,
		Page:  2,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// Limit is applied client-side; the archive has no limit parameter.
	if len(quotes) != 1 || quotes[0].ID != "a" {
		t.Errorf("Search() = %v, want [a]", quotes)
	}
}

func TestTronald_QuoteImage(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/tr1/meme" {
			t.Errorf("path = %q, want /quote/tr1/meme", r.URL.Path)
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	p, _ := NewTronald(server.URL)
	img, err := p.QuoteImage(context.Background(), "tr1")
	if err != nil {
		t.Fatalf("QuoteImage() error = %v", err)
	}
	if len(img) != len(payload) {
		t.Errorf("QuoteImage() returned %d bytes, want %d", len(img), len(payload))
	}
}

func TestTronald_QuoteImage_BlankID(t *testing.T) {
	p, _ := NewTronald("")
	if _, err := p.QuoteImage(context.Background(), "  "); err == nil {
		t.Fatal("QuoteImage(blank) = nil error")
	}
}

func TestTronald_SupportsTag(t *testing.T) {
	p, _ := NewTronald("")
	if !p.SupportsTag("politics") || !p.SupportsTag("trump") {
		t.Error("SupportsTag() = false for fixed tags")
	}
	if p.SupportsTag("music") {
		t.Error("SupportsTag(music) = true, want false")
	}
}
