package content

import (
	"sort"
)

// Collection is an ordered, read-only set of entries: newest first, ties
// broken by slug. Entries without a date sort last.
type Collection struct {
	entries []Entry
	index   map[string]int
}

// NewCollection sorts a copy of entries and indexes them by slug. When two
// entries share a slug the later one in the input wins.
func NewCollection(entries []Entry) *Collection {
	bySlug := make(map[string]Entry, len(entries))
	for _, e := range entries {
		bySlug[e.Slug] = e
	}
	sorted := make([]Entry, 0, len(bySlug))
	for _, e := range bySlug {
		sorted = append(sorted, e)
	}
	SortEntries(sorted)
	c := &Collection{entries: sorted, index: make(map[string]int, len(sorted))}
	for i, e := range sorted {
		c.index[e.Slug] = i
	}
	return c
}

// SortEntries orders entries newest first, then by slug.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return b.Date.IsZero()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.Slug < b.Slug
	})
}

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.entries) }

// Entries returns the ordered entries. The slice is a copy.
func (c *Collection) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get looks an entry up by slug.
func (c *Collection) Get(slug string) (Entry, bool) {
	i, ok := c.index[slug]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Navigation returns the neighbours of slug. Unknown slugs have none.
func (c *Collection) Navigation(slug string) Navigation {
	i, ok := c.index[slug]
	if !ok {
		return Navigation{}
	}
	var nav Navigation
	if i+1 < len(c.entries) {
		nav.Previous = ref(c.entries[i+1])
	}
	if i > 0 {
		nav.Next = ref(c.entries[i-1])
	}
	return nav
}

func ref(e Entry) *NavRef {
	return &NavRef{Slug: e.Slug, Title: e.Title}
}
