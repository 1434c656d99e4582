// Package diffstat draws the proportional +/- bars shown next to each
// changed file and decides when a commit is too large to render.
package diffstat

import "strings"

// Width is the number of columns a bar may use before it is scaled.
const Width = 78

// Limits above which a commit's diff body is not rendered.
const (
	MaxFiles   = 1000
	MaxDeltas  = 1000
	MaxAdded   = 100000
	MaxDeleted = 100000
)

// Scale returns how many plus and minus symbols to draw for a delta with
// add additions and del deletions in a bar of the given width.
//
// When the change fits, the counts are returned unchanged. Otherwise both
// sides are scaled down and every nonzero side keeps at least one symbol,
// so plus+minus never exceeds width+2.
func Scale(add, del, width int) (plus, minus int) {
	changed := add + del
	if changed <= width {
		return add, del
	}
	if add > 0 {
		plus = width*add/changed + 1
	}
	if del > 0 {
		minus = width*del/changed + 1
	}
	return plus, minus
}

// Bar returns the symbol strings for a delta at the default Width.
func Bar(add, del int) (string, string) {
	plus, minus := Scale(add, del, Width)
	return strings.Repeat("+", plus), strings.Repeat("-", minus)
}

// TooLarge reports whether a commit exceeds any of the rendering limits.
func TooLarge(files, deltas, add, del int) bool {
	return files > MaxFiles ||
		deltas > MaxDeltas ||
		add > MaxAdded ||
		del > MaxDeleted
}
