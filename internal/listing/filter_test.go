package listing

import (
	"reflect"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func people() []Item {
	return []Item{
		{ID: "1", Fields: map[string]string{"name": "Ann Lee", "email": "ann@example.com"}},
		{ID: "2", Fields: map[string]string{"name": "Bob Stone", "email": "bob@example.com"}},
		{ID: "3", Fields: map[string]string{"name": "Joanna Park", "email": "jo@example.org"}},
		{ID: "4", Fields: map[string]string{"name": "STRASSE", "email": "s@example.de"}},
	}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestFilterEngine_Apply(t *testing.T) {
	f := NewFilterEngine([]string{"name", "email"}, time.Millisecond)

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3", "4"}},
		{"   ", []string{"1", "2", "3", "4"}},
		{"ann", []string{"1", "3"}},
		{"ANN", []string{"1", "3"}},
		{" ann", []string{}},
		{" stone", []string{"2"}},
		{"example.org", []string{"3"}},
		{"strasse", []string{"4"}},
		{"zz-no-match", []string{}},
	}
	for _, tt := range tests {
		got := ids(f.Apply(people(), tt.term))
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Apply(%q) = %v, want %v", tt.term, got, tt.want)
		}
	}
}

func TestFilterEngine_NoFieldsMatchesID(t *testing.T) {
	f := NewFilterEngine(nil, time.Millisecond)
	got := ids(f.Apply(people(), "3"))
	if !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("Apply by id = %v, want [3]", got)
	}
}

func TestFilterEngine_DebounceCollapsesBurst(t *testing.T) {
	f := NewFilterEngine([]string{"name"}, 300*time.Millisecond)

	r1 := f.SetTerm("a")
	r2 := f.SetTerm("ab")
	r3 := f.SetTerm("abc")
	if r3.After != 300*time.Millisecond {
		t.Fatalf("After = %v, want 300ms", r3.After)
	}
	if f.Raw() != "abc" || f.Term() != "" || !f.Pending() {
		t.Fatalf("raw=%q term=%q pending=%v before timers fire", f.Raw(), f.Term(), f.Pending())
	}

	var published []string
	for _, seq := range []uint64{r1.Seq, r2.Seq, r3.Seq} {
		if term, ok := f.Elapsed(seq); ok {
			published = append(published, term)
		}
	}
	if !reflect.DeepEqual(published, []string{"abc"}) {
		t.Fatalf("published = %v, want [abc]", published)
	}
	if _, ok := f.Elapsed(r3.Seq); ok {
		t.Fatalf("second Elapsed for the same term published again")
	}
}

func TestFilterEngine_FlushCancelsTimers(t *testing.T) {
	f := NewFilterEngine([]string{"name"}, time.Second)
	req := f.SetTerm("bob")

	term, ok := f.Flush()
	if !ok || term != "bob" {
		t.Fatalf("Flush = %q, %v; want bob, true", term, ok)
	}
	if _, ok := f.Elapsed(req.Seq); ok {
		t.Fatalf("timer fired after Flush published again")
	}
}

func TestFilterEngine_VisibleTracksGrowth(t *testing.T) {
	f := NewFilterEngine([]string{"name"}, time.Millisecond)
	f.Restore("ann")

	all := people()
	if got := ids(f.Visible(all[:2])); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("Visible(first two) = %v, want [1]", got)
	}
	if got := ids(f.Visible(all)); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("Visible(all) = %v, want [1 3]", got)
	}
	if got := ids(f.Visible(all[:1])); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("Visible after shrink = %v, want [1]", got)
	}
}

func TestFilterEngine_PropertyApply(t *testing.T) {
	f := NewFilterEngine([]string{"name"}, time.Millisecond)
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z ]{0,12}`), 0, 30).Draw(t, "names")
		term := rapid.StringMatching(`[a-zA-Z]{0,3}`).Draw(t, "term")

		items := make([]Item, len(names))
		for i, name := range names {
			items[i] = Item{ID: string(rune('a' + i%26)), Fields: map[string]string{"name": name}}
		}

		once := f.Apply(items, term)
		twice := f.Apply(once, term)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("Apply not idempotent for %q", term)
		}
		if len(once) > len(items) {
			t.Fatalf("Apply grew the set")
		}
		if got := f.Apply(items, ""); !reflect.DeepEqual(got, items) {
			t.Fatalf("empty term is not the identity")
		}
	})
}
