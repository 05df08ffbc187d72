package inkpress

import (
	"strings"
	"testing"
	"time"

	"github.com/calmloop/inkpress/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Swift: Optionals & Unwrapping  ", "swift-optionals-unwrapping"},
		{"already-a-slug", "already-a-slug"},
		{"Trailing!!!", "trailing"},
		{"123 Go", "123-go"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, p, want string
	}{
		{"https://example.com", "/posts/hello/", "https://example.com/posts/hello/"},
		{"https://example.com/", "/about/", "https://example.com/about/"},
		{"https://example.com", "/feed.xml", "https://example.com/feed.xml"},
		{"https://example.com", "/", "https://example.com/"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.p); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.p, got, tt.want)
		}
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Title: "Test Blog", URL: "https://example.com", Author: "Jo"}
	doc := &content.Document{
		Title:     "First Post",
		Permalink: "/posts/first/",
		Summary:   "An opener.",
		Date:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Tags:      []string{"swift", "enums"},
	}
	out := BlogPostingJsonLD(doc, cfg)
	for _, want := range []string{
		`"@type":"BlogPosting"`,
		`"headline":"First Post"`,
		`"datePublished":"2026-01-10"`,
		`"keywords":"swift, enums"`,
		`"url":"https://example.com/posts/first/"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON-LD missing %s:\n%s", want, out)
		}
	}
}

func TestDocCache(t *testing.T) {
	loads := 0
	docs := []*content.Document{
		{Title: "A", Slug: "a", Draft: true},
		{Title: "B", Slug: "b"},
	}
	cache := NewDocCache(func() ([]*content.Document, error) {
		loads++
		return docs, nil
	}, time.Minute)

	got, err := cache.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List returned %d docs, want 2", len(got))
	}
	if _, err := cache.List(); err != nil {
		t.Fatal(err)
	}
	if loads != 1 {
		t.Errorf("load called %d times within TTL, want 1", loads)
	}

	drafts, err := cache.Drafts()
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 1 || drafts[0].Slug != "a" {
		t.Errorf("Drafts = %v", drafts)
	}

	if _, err := cache.GetBySlug("b"); err != nil {
		t.Errorf("GetBySlug(b): %v", err)
	}
	if _, err := cache.GetBySlug("zzz"); err != ErrNotFound {
		t.Errorf("GetBySlug(zzz) err = %v, want ErrNotFound", err)
	}

	cache.Invalidate()
	if _, err := cache.List(); err != nil {
		t.Fatal(err)
	}
	if loads != 2 {
		t.Errorf("load called %d times after Invalidate, want 2", loads)
	}
}
