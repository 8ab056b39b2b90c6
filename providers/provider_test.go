package providers

import (
	"strings"
	"testing"
	"time"
)

func TestNewQuote_Validation(t *testing.T) {
	tests := []struct {
		name    string
		id      ID
		text    string
		author  string
		wantErr bool
	}{
		{"valid", "q1", "some text", "Someone", false},
		{"blank id", "", "some text", "Someone", true},
		{"whitespace id", "   ", "some text", "Someone", true},
		{"blank text", "q1", "", "Someone", true},
		{"whitespace text", "q1", "  \t", "Someone", true},
		{"blank author", "q1", "some text", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuote(tt.id, tt.text, tt.author)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewQuote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !q.IsZero() {
				t.Error("NewQuote() returned non-zero quote with error")
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("  abc  ")
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}
	if id != "abc" {
		t.Errorf("ParseID() = %q, want trimmed %q", id, "abc")
	}

	if _, err := ParseID("   "); err == nil {
		t.Error("ParseID(blank) = nil error, want error")
	}
}

func TestDeriveID_Stable(t *testing.T) {
	a := DeriveID("the same text")
	b := DeriveID("the same text")
	if a != b {
		t.Errorf("DeriveID not stable: %q vs %q", a, b)
	}
	if a == DeriveID("different text") {
		t.Error("DeriveID collided for different text")
	}
}

func TestQuote_WithTags_DropsBlanks(t *testing.T) {
	q, _ := NewQuote("q1", "text", "author")
	q = q.WithTags("x", "", "  ", "y")
	if len(q.Tags) != 2 || q.Tags[0] != "x" || q.Tags[1] != "y" {
		t.Errorf("WithTags() = %v, want [x y]", q.Tags)
	}
}

func TestQuote_Equal(t *testing.T) {
	base, _ := NewQuote("q1", "text", "author")
	base = base.WithTags("x").WithDate(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	same := base
	if !base.Equal(same) {
		t.Error("Equal() = false for identical quotes")
	}

	otherText := base
	otherText.Text = "changed"
	if base.Equal(otherText) {
		t.Error("Equal() = true despite different text")
	}

	otherTags := base.WithTags("y")
	if base.Equal(otherTags) {
		t.Error("Equal() = true despite different tags")
	}

	// Same instant in a different location is still equal.
	otherZone := base.WithDate(base.Date.In(time.FixedZone("X", 3600)))
	if !base.Equal(otherZone) {
		t.Error("Equal() = false for same instant in different zone")
	}
}

func TestFetchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     FetchRequest
		wantErr bool
	}{
		{"valid", FetchRequest{Count: 1}, false},
		{"max", FetchRequest{Count: 100}, false},
		{"zero count", FetchRequest{}, true},
		{"negative count", FetchRequest{Count: -1}, true},
		{"too many", FetchRequest{Count: 101}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       SearchQuery
		wantErr bool
	}{
		{"query only", SearchQuery{Query: "life"}, false},
		{"author only", SearchQuery{Author: "Seneca"}, false},
		{"tags only", SearchQuery{Tags: []string{"wisdom"}}, false},
		{"no filter", SearchQuery{Limit: 10}, true},
		{"negative limit", SearchQuery{Query: "x", Limit: -1}, true},
		{"limit too large", SearchQuery{Query: "x", Limit: 151}, true},
		{"negative page", SearchQuery{Query: "x", Page: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.q.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIError_Format(t *testing.T) {
	err := apiError("quotable", 503, "service unavailable")
	want := "quotable API error (503): service unavailable"
	if err.Error() != want {
		t.Errorf("apiError() = %q, want %q", err.Error(), want)
	}
}

func TestTagsFromList(t *testing.T) {
	tags := TagsFromList("kanye", []string{"kanye", "music"})
	if len(tags) != 2 {
		t.Fatalf("TagsFromList() returned %d tags, want 2", len(tags))
	}
	for _, tag := range tags {
		if tag.Source != "kanye" {
			t.Errorf("tag %q has source %q, want kanye", tag.Name, tag.Source)
		}
	}
}

func TestSearchQuery_IsEmpty(t *testing.T) {
	if !(SearchQuery{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero query")
	}
	if (SearchQuery{Query: strings.Repeat("x", 3)}).IsEmpty() {
		t.Error("IsEmpty() = true for query with text")
	}
}
