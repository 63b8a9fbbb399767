package listing

import (
	"testing"

	"pgregory.net/rapid"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name                                      string
		scroll, viewport, height, count, overscan int
		want                                      Window
	}{
		{"empty list", 0, 10, 1, 0, 3, Window{}},
		{"top no overscan", 0, 5, 1, 100, 0, Window{Start: 0, End: 5}},
		{"top with overscan", 0, 5, 1, 100, 2, Window{Start: 0, End: 7}},
		{"middle with overscan", 50, 5, 1, 100, 2, Window{Start: 48, End: 57, OffsetPx: 48}},
		{"tail clamps to count", 95, 10, 1, 100, 3, Window{Start: 92, End: 100, OffsetPx: 92}},
		{"tall rows", 7, 10, 2, 100, 0, Window{Start: 3, End: 9, OffsetPx: 6}},
		{"short list", 0, 20, 1, 4, 3, Window{Start: 0, End: 4}},
		{"negative scroll", -10, 5, 1, 100, 0, Window{Start: 0, End: 5}},
		{"zero height treated as one", 3, 2, 0, 100, 0, Window{Start: 3, End: 5, OffsetPx: 3}},
		{"scroll beyond end", 500, 5, 1, 10, 1, Window{Start: 10, End: 10, OffsetPx: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.scroll, tt.viewport, tt.height, tt.count, tt.overscan)
			if got != tt.want {
				t.Fatalf("Project(%d, %d, %d, %d, %d) = %+v, want %+v",
					tt.scroll, tt.viewport, tt.height, tt.count, tt.overscan, got, tt.want)
			}
		})
	}
}

func TestProject_PropertyBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 1_000_000).Draw(t, "count")
		height := rapid.IntRange(1, 50).Draw(t, "height")
		viewport := rapid.IntRange(0, 500).Draw(t, "viewport")
		overscan := rapid.IntRange(0, 20).Draw(t, "overscan")
		scroll := rapid.IntRange(-100, count*height+1000).Draw(t, "scroll")

		w := Project(scroll, viewport, height, count, overscan)
		if w.Start < 0 || w.Start > w.End || w.End > count {
			t.Fatalf("window %+v violates 0 <= start <= end <= %d", w, count)
		}
		bound := (viewport+height-1)/height + 1 + 2*overscan
		if w.Len() > bound {
			t.Fatalf("window len %d exceeds bound %d (count %d)", w.Len(), bound, count)
		}
	})
}

func TestClampScroll(t *testing.T) {
	if got := ClampScroll(-3, 10, 1, 100); got != 0 {
		t.Fatalf("ClampScroll negative = %d, want 0", got)
	}
	if got := ClampScroll(500, 10, 1, 100); got != 90 {
		t.Fatalf("ClampScroll past tail = %d, want 90", got)
	}
	if got := ClampScroll(5, 10, 1, 3); got != 0 {
		t.Fatalf("ClampScroll short list = %d, want 0", got)
	}
	if got := MaxScroll(4, 2, 10); got != 16 {
		t.Fatalf("MaxScroll = %d, want 16", got)
	}
}
