package blog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vedran/blog/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_site.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2015, 5, d, 22, 12, 3, 284e6, time.UTC)
}

func testEntries() []content.Entry {
	return []content.Entry{
		{Slug: "/blog/hello-world/", Title: "Hello World", Date: day(1), Body: "<p>first</p>", Excerpt: "first", SourceDir: "blog/hello-world", Assets: []string{"salty_egg.jpg", "files/a b.pdf"}},
		{Slug: "/blog/my-second-post/", Title: "My Second Post!", Date: day(6), Body: "<p>second</p>", Description: "second desc"},
		{Slug: "/blog/new-beginnings/", Title: "New Beginnings", Date: day(28), FeaturedImage: "/blog/new-beginnings/cover.jpg", Draft: true},
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestReplaceAndGetEntry(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ReplaceEntries(testEntries()); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}

	got, err := s.GetEntry("/blog/hello-world/")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	want := testEntries()[0]
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if !got.Date.Equal(want.Date) {
		t.Errorf("Date = %v, want %v", got.Date, want.Date)
	}
	if got.DisplayDate != "May 01, 2015" {
		t.Errorf("DisplayDate = %q, want %q", got.DisplayDate, "May 01, 2015")
	}
	if got.Body != want.Body || got.Excerpt != want.Excerpt || got.SourceDir != want.SourceDir {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Assets) != 2 || got.Assets[1] != "files/a b.pdf" {
		t.Errorf("Assets = %q", got.Assets)
	}

	draft, err := s.GetEntry("/blog/new-beginnings/")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !draft.Draft {
		t.Error("Draft should round trip")
	}
	if draft.FeaturedImage != "/blog/new-beginnings/cover.jpg" {
		t.Errorf("FeaturedImage = %q", draft.FeaturedImage)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	s := setupTestStore(t)
	if _, err := s.GetEntry("/missing/"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntriesOrder(t *testing.T) {
	s := setupTestStore(t)
	entries := append(testEntries(),
		content.Entry{Slug: "/undated/", Title: "Undated"},
		content.Entry{Slug: "/blog/a-same-day/", Title: "Same Day", Date: day(6)},
	)
	if err := s.ReplaceEntries(entries); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}

	got, err := s.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	want := []string{"/blog/new-beginnings/", "/blog/a-same-day/", "/blog/my-second-post/", "/blog/hello-world/", "/undated/"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Slug != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i].Slug, want[i])
		}
	}

	// the store and the in-memory collection agree on order
	coll := content.NewCollection(entries)
	for i, e := range coll.Entries() {
		if e.Slug != got[i].Slug {
			t.Errorf("collection entry %d = %q, store has %q", i, e.Slug, got[i].Slug)
		}
	}
}

func TestReplaceEntriesDropsOldRows(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ReplaceEntries(testEntries()); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	if err := s.ReplaceEntries(testEntries()[:1]); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	got, err := s.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(got))
	}
}

func TestNavigationMatchesCollection(t *testing.T) {
	s := setupTestStore(t)
	entries := append(testEntries(),
		content.Entry{Slug: "/undated-b/", Title: "B"},
		content.Entry{Slug: "/undated-a/", Title: "A"},
		content.Entry{Slug: "/blog/a-same-day/", Title: "Same Day", Date: day(6)},
	)
	if err := s.ReplaceEntries(entries); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	coll := content.NewCollection(entries)

	for _, e := range entries {
		got, err := s.Navigation(e.Slug)
		if err != nil {
			t.Fatalf("Navigation(%q) failed: %v", e.Slug, err)
		}
		want := coll.Navigation(e.Slug)
		if !sameRef(got.Previous, want.Previous) {
			t.Errorf("Navigation(%q).Previous = %v, want %v", e.Slug, got.Previous, want.Previous)
		}
		if !sameRef(got.Next, want.Next) {
			t.Errorf("Navigation(%q).Next = %v, want %v", e.Slug, got.Next, want.Next)
		}
	}
}

func TestNavigationEnds(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ReplaceEntries(testEntries()); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	newest, err := s.Navigation("/blog/new-beginnings/")
	if err != nil {
		t.Fatalf("Navigation failed: %v", err)
	}
	if newest.Next != nil {
		t.Errorf("newest entry should have no next, got %v", newest.Next)
	}
	if newest.Previous == nil || newest.Previous.Title != "My Second Post!" {
		t.Errorf("Previous = %v", newest.Previous)
	}
	if _, err := s.Navigation("/missing/"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func sameRef(a, b *content.NavRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestEntryCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ReplaceEntries(testEntries()[:1]); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	c := NewEntryCache(s, time.Hour)

	entries, err := c.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if err := s.ReplaceEntries(testEntries()); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	if entries, _ := c.ListEntries(); len(entries) != 1 {
		t.Fatalf("cache should still hold 1 entry before invalidation, got %d", len(entries))
	}

	c.Invalidate()
	entries, err = c.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after invalidation, got %d", len(entries))
	}

	e, nav, err := c.GetEntry("/blog/my-second-post/")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e.Description != "second desc" {
		t.Errorf("Description = %q", e.Description)
	}
	if nav.Previous == nil || nav.Previous.Slug != "/blog/hello-world/" {
		t.Errorf("Previous = %v", nav.Previous)
	}
	if _, _, err := c.GetEntry("/missing/"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	if err := s.ReplaceEntries(testEntries()[:1]); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	c := NewEntryCache(s, 10*time.Millisecond)
	if _, err := c.ListEntries(); err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if err := s.ReplaceEntries(testEntries()); err != nil {
		t.Fatalf("ReplaceEntries failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	entries, err := c.ListEntries()
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected the cache to reload after its TTL, got %d entries", len(entries))
	}
}
