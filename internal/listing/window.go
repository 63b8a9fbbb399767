package listing

// Project computes the contiguous index range to render for the given
// scroll position, plus overscan rows on both sides.
//
// Item height is fixed. Variable-height rows are not supported; every item
// occupies exactly itemHeight units (terminal lines in the TUI host).
//
// The result always satisfies 0 <= Start <= End <= itemCount, and
// End-Start is at most ceil(viewportHeight/itemHeight)+1+2*overscan no matter
// how large itemCount grows.
func Project(scrollOffset, viewportHeight, itemHeight, itemCount, overscan int) Window {
	if itemCount <= 0 {
		return Window{}
	}
	if itemHeight <= 0 {
		itemHeight = 1
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	if overscan < 0 {
		overscan = 0
	}

	start := max(0, scrollOffset/itemHeight-overscan)
	end := min(itemCount, ceilDiv(scrollOffset+viewportHeight, itemHeight)+overscan)
	if start > end {
		start = end
	}
	return Window{Start: start, End: end, OffsetPx: start * itemHeight}
}

// MaxScroll returns the largest scroll offset that still fills the viewport.
func MaxScroll(viewportHeight, itemHeight, itemCount int) int {
	if itemHeight <= 0 {
		itemHeight = 1
	}
	return max(0, itemCount*itemHeight-viewportHeight)
}

// ClampScroll bounds offset to [0, MaxScroll].
func ClampScroll(offset, viewportHeight, itemHeight, itemCount int) int {
	return min(max(0, offset), MaxScroll(viewportHeight, itemHeight, itemCount))
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
