// Package textlayout wraps and measures text for the timeline engine.
//
// Geometry is integral and font-relative: a Font reports its own line metrics
// and the advance of a string, and a Layout positions wrapped lines inside a
// box. The terminal host uses CellFont, where one unit is one cell.
package textlayout

import "github.com/mattn/go-runewidth"

// Font measures text.
type Font interface {
	// Height is the glyph box height.
	Height() int
	// Leading is the extra space between consecutive lines.
	Leading() int
	// LineSpacing is the distance between consecutive baselines.
	LineSpacing() int
	// Advance is the horizontal extent of text when drawn on one line.
	Advance(text string) int
}

// CellFont measures text in terminal cells.
type CellFont struct{}

func (CellFont) Height() int      { return 1 }
func (CellFont) Leading() int     { return 0 }
func (CellFont) LineSpacing() int { return 1 }

func (CellFont) Advance(text string) int {
	return runewidth.StringWidth(text)
}

// Point is a position in layout units.
type Point struct {
	X int
	Y int
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Rect is an axis aligned box. Bottom and Right are exclusive.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Bottom() int { return r.Y + r.Height }
func (r Rect) Right() int  { return r.X + r.Width }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Translate moves the rect by p.
func (r Rect) Translate(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Union returns the smallest rect containing both r and o. Empty rects are
// ignored.
func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	if r.Empty() {
		return o
	}
	x := minInt(r.X, o.X)
	y := minInt(r.Y, o.Y)
	right := maxInt(r.Right(), o.Right())
	bottom := maxInt(r.Bottom(), o.Bottom())
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
