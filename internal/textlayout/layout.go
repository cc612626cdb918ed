package textlayout

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Align controls horizontal placement of lines inside the layout box.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// WrapMode controls line breaking.
type WrapMode int

const (
	// WrapWordOrAnywhere breaks at word boundaries and hard-breaks words
	// that do not fit on a line of their own.
	WrapWordOrAnywhere WrapMode = iota
	// NoWrap keeps the text on a single line regardless of width.
	NoWrap
)

// Options configure a Layout.
type Options struct {
	Align Align
	Wrap  WrapMode
}

// Line is one positioned, measured line of a Layout.
type Line struct {
	Text  string
	X     int
	Y     int
	Width int
}

// Layout holds a string and its most recent line breaking.
type Layout struct {
	font  Font
	text  string
	opts  Options
	lines []Line
	box   Rect
}

// New returns a layout for text. No lines exist until Relayout is called.
func New(font Font, text string, opts Options) *Layout {
	return &Layout{font: font, text: text, opts: opts}
}

func (l *Layout) Text() string { return l.text }

// SetText replaces the text and drops the current lines.
func (l *Layout) SetText(text string) {
	l.text = text
	l.Clear()
}

// Relayout breaks the text for a box of the given width whose first line
// starts at origin. Lines are stacked by the font's line spacing. It returns
// the number of lines produced, which is at least one.
func (l *Layout) Relayout(origin Point, width int) int {
	if width < 1 {
		width = 1
	}
	spacing := l.font.LineSpacing()
	parts := breakLines(l.text, columns(l.font, width), l.opts.Wrap)
	l.lines = l.lines[:0]
	for i, part := range parts {
		advance := l.font.Advance(part)
		x := origin.X
		if l.opts.Align == AlignRight {
			x = origin.X + width - advance
			if x < origin.X {
				x = origin.X
			}
		}
		l.lines = append(l.lines, Line{
			Text:  part,
			X:     x,
			Y:     origin.Y + i*spacing,
			Width: advance,
		})
	}
	l.box = Rect{X: origin.X, Y: origin.Y, Width: width, Height: len(parts) * spacing}
	return len(parts)
}

// Clear drops the laid out lines. A cleared layout draws nothing.
func (l *Layout) Clear() {
	l.lines = l.lines[:0]
	l.box = Rect{}
}

// Lines returns the lines from the last Relayout.
func (l *Layout) Lines() []Line {
	return l.lines
}

// Bounds is the box covered by the current lines.
func (l *Layout) Bounds() Rect {
	return l.box
}

// columns converts a width to a column count. Fonts are treated as
// monospaced, one column being the advance of a space.
func columns(font Font, width int) int {
	cell := font.Advance(" ")
	if cell < 1 {
		cell = 1
	}
	if cols := width / cell; cols > 0 {
		return cols
	}
	return 1
}

func breakLines(text string, width int, mode WrapMode) []string {
	if mode == NoWrap || text == "" {
		return []string{text}
	}
	wrapped := wrap.String(wordwrap.String(text, width), width)
	parts := strings.Split(wrapped, "\n")
	for i := range parts {
		parts[i] = strings.TrimRight(parts[i], " ")
	}
	return parts
}
