package listing_test

import (
	"fmt"
	"net/url"
	"strconv"
	"testing"

	"github.com/five82/glide/internal/listing"
	"github.com/five82/glide/internal/location"
)

// numbered serves total items in pages of size.
type numbered struct{ total, size int }

func (n numbered) page(req listing.FetchRequest) listing.Page {
	p, _ := strconv.Atoi(req.Cursor)
	start := min((p-1)*n.size, n.total)
	end := min(start+n.size, n.total)
	page := listing.Page{Cursor: req.Cursor, HasMore: end < n.total}
	for i := start + 1; i <= end; i++ {
		page.Items = append(page.Items, listing.Item{
			ID:     strconv.Itoa(i),
			Fields: map[string]string{"name": fmt.Sprintf("user %03d", i)},
		})
	}
	return page
}

// settle answers every fetch the effects ask for until the controller stops
// requesting pages.
func settle(t *testing.T, c *listing.Controller, src numbered, effects []listing.Effect) {
	t.Helper()
	fetched := 0
	for len(effects) > 0 {
		eff := effects[0]
		effects = effects[1:]
		fe, ok := eff.(listing.FetchEffect)
		if !ok {
			continue
		}
		fetched++
		if fetched > 50 {
			t.Fatalf("fetch loop did not settle")
		}
		res := listing.FetchResult{Request: fe.Request, Page: src.page(fe.Request)}
		effects = append(effects, c.Handle(listing.PageLoaded{Result: res})...)
	}
}

func TestController_BackAndForwardKeepHistory(t *testing.T) {
	src := numbered{total: 200, size: 20}
	hist := location.NewHistory("users", url.Values{})
	c := listing.New(listing.Config{
		FirstCursor:    "1",
		Fields:         []string{"name"},
		ItemHeight:     1,
		Overscan:       3,
		FetchThreshold: 10,
	}, hist)

	settle(t, c, src, c.Handle(listing.Mounted{}))
	settle(t, c, src, c.Handle(listing.Resized{Height: 20}))
	if got := hist.Values().Get(listing.PageKey); got != "2" {
		t.Fatalf("location page = %q, want 2", got)
	}
	if hist.Len() != 2 {
		t.Fatalf("history len = %d, want 2", hist.Len())
	}

	back, ok := hist.Back()
	if !ok {
		t.Fatalf("Back unavailable")
	}
	settle(t, c, src, c.Handle(listing.LocationChanged{Values: back}))
	if got := hist.Values().Get(listing.PageKey); got != "1" {
		t.Fatalf("after back location page = %q, want 1", got)
	}
	if hist.Index() != 0 || hist.Len() != 2 {
		t.Fatalf("after back index=%d len=%d, want 0 and 2", hist.Index(), hist.Len())
	}
	if f := c.Frame(); f.Scroll != 0 || f.Loaded == 0 {
		t.Fatalf("after back scroll=%d loaded=%d", f.Scroll, f.Loaded)
	}

	forward, ok := hist.Forward()
	if !ok {
		t.Fatalf("Forward unavailable after back")
	}
	settle(t, c, src, c.Handle(listing.LocationChanged{Values: forward}))
	if got := hist.Values().Get(listing.PageKey); got != "2" {
		t.Fatalf("after forward location page = %q, want 2", got)
	}
	if hist.Index() != 1 || hist.Len() != 2 {
		t.Fatalf("after forward index=%d len=%d, want 1 and 2", hist.Index(), hist.Len())
	}
}
