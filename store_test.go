package inkpress

import (
	"path/filepath"
	"testing"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("failed to open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestOpenIndex(t *testing.T) {
	idx := setupTestIndex(t)
	if idx.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestIndexPutAndGet(t *testing.T) {
	idx := setupTestIndex(t)

	entry := IndexEntry{
		Source:    "posts/enums.md",
		Permalink: "/swift/enums/",
		Hash:      "abc123",
	}
	if err := idx.Put(entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := idx.Get("posts/enums.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if got.Permalink != entry.Permalink {
		t.Errorf("Permalink = %q, want %q", got.Permalink, entry.Permalink)
	}
	if got.Hash != entry.Hash {
		t.Errorf("Hash = %q, want %q", got.Hash, entry.Hash)
	}
	if got.BuiltAt == "" {
		t.Error("BuiltAt should have been stamped")
	}
}

func TestIndexGetMissing(t *testing.T) {
	idx := setupTestIndex(t)

	_, ok, err := idx.Get("posts/nope.md")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected entry to be absent")
	}
}

func TestIndexPutOverwrites(t *testing.T) {
	idx := setupTestIndex(t)

	if err := idx.Put(IndexEntry{Source: "a.md", Permalink: "/a/", Hash: "h1"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := idx.Put(IndexEntry{Source: "a.md", Permalink: "/a/", Hash: "h2"}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := idx.Get("a.md")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if got.Hash != "h2" {
		t.Errorf("Hash = %q, want %q", got.Hash, "h2")
	}

	entries, err := idx.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List returned %d entries, want 1", len(entries))
	}
}

func TestIndexPrune(t *testing.T) {
	idx := setupTestIndex(t)

	for _, src := range []string{"a.md", "b.md", "c.md"} {
		if err := idx.Put(IndexEntry{Source: src, Permalink: "/" + src + "/", Hash: "h"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	removed, err := idx.Prune(map[string]struct{}{"a.md": {}, "c.md": {}})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(removed) != 1 || removed[0].Source != "b.md" {
		t.Fatalf("removed = %+v, want only b.md", removed)
	}

	entries, err := idx.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("List returned %d entries, want 2", len(entries))
	}
}
