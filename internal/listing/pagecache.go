package listing

import (
	"strconv"

	"github.com/google/btree"
)

// idEntry maps an identifier to its latest position in the flattened slice.
type idEntry struct {
	id  string
	pos int
}

func idLess(a, b idEntry) bool {
	return a.id < b.id
}

// PageCache holds every page fetched for the current query in fetch order.
// It keeps a running flattened slice so Items is O(1).
type PageCache struct {
	first     string
	expected  string
	pages     []Page
	items     []Item
	index     *btree.BTreeG[idEntry]
	exhausted bool
}

// NewPageCache returns an empty cache whose first page has cursor first.
// Numbered pagination uses "1"; opaque cursor APIs use "".
func NewPageCache(first string) *PageCache {
	return &PageCache{
		first:    first,
		expected: first,
		index:    btree.NewG(16, idLess),
	}
}

// Append adds page to the tail. The page cursor must match the expected next
// cursor, which guards against a stale response landing after a reset.
func (c *PageCache) Append(page Page) error {
	if c.exhausted {
		return ErrExhausted
	}
	if page.Cursor != c.expected {
		return &OutOfOrderError{Expected: c.expected, Got: page.Cursor}
	}

	page.Items = append([]Item(nil), page.Items...)
	c.pages = append(c.pages, page)
	for _, item := range page.Items {
		c.index.ReplaceOrInsert(idEntry{id: item.ID, pos: len(c.items)})
		c.items = append(c.items, item)
	}

	if !page.HasMore {
		c.exhausted = true
		c.expected = ""
		return nil
	}
	c.expected = nextCursor(page)
	return nil
}

// nextCursor derives the following cursor when the response did not carry
// one. Numbered pages count up; anything else has no successor.
func nextCursor(page Page) string {
	if page.Next != "" {
		return page.Next
	}
	n, err := strconv.Atoi(page.Cursor)
	if err != nil {
		return ""
	}
	return strconv.Itoa(n + 1)
}

// Reset drops every page. Used whenever the query changes.
func (c *PageCache) Reset() {
	c.pages = nil
	c.items = nil
	c.index.Clear(false)
	c.exhausted = false
	c.expected = c.first
}

// Items returns the flattened item sequence. The returned slice is capped so
// appending to it never writes into the cache.
func (c *PageCache) Items() []Item {
	return c.items[:len(c.items):len(c.items)]
}

// Len returns the number of loaded items.
func (c *PageCache) Len() int {
	return len(c.items)
}

// Pages returns the number of loaded pages.
func (c *PageCache) Pages() int {
	return len(c.pages)
}

// Exhausted reports whether a page said there was no further data.
func (c *PageCache) Exhausted() bool {
	return c.exhausted
}

// NextCursor is the cursor the next Append must carry.
func (c *PageCache) NextCursor() string {
	return c.expected
}

// FirstCursor is the cursor of page one.
func (c *PageCache) FirstCursor() string {
	return c.first
}

// LastCursor is the cursor of the most recently appended page, or "" when
// nothing is loaded.
func (c *PageCache) LastCursor() string {
	if len(c.pages) == 0 {
		return ""
	}
	return c.pages[len(c.pages)-1].Cursor
}

// HasCursor reports whether a page with cursor has been appended.
func (c *PageCache) HasCursor(cursor string) bool {
	for _, p := range c.pages {
		if p.Cursor == cursor {
			return true
		}
	}
	return false
}

// Lookup finds an item by identifier. When the same identifier was fetched
// twice the later occurrence wins.
func (c *PageCache) Lookup(id string) (Item, bool) {
	entry, ok := c.index.Get(idEntry{id: id})
	if !ok {
		return Item{}, false
	}
	return c.items[entry.pos], true
}
