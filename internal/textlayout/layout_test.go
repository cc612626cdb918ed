package textlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lineTexts(l *Layout) []string {
	out := make([]string, 0, len(l.Lines()))
	for _, line := range l.Lines() {
		out = append(out, line.Text)
	}
	return out
}

func TestCellFontAdvanceCountsCells(t *testing.T) {
	font := CellFont{}
	require.Equal(t, 5, font.Advance("hello"))
	require.Equal(t, 4, font.Advance("日本"))
	require.Equal(t, 0, font.Advance(""))
	require.Equal(t, 1, font.LineSpacing())
}

func TestRelayoutWrapsAtWordBoundaries(t *testing.T) {
	l := New(CellFont{}, "the quick brown fox", Options{})
	n := l.Relayout(Point{X: 4, Y: 2}, 10)

	require.Equal(t, 2, n)
	require.Equal(t, []string{"the quick", "brown fox"}, lineTexts(l))
	require.Equal(t, 4, l.Lines()[0].X)
	require.Equal(t, 2, l.Lines()[0].Y)
	require.Equal(t, 3, l.Lines()[1].Y)
	require.Equal(t, Rect{X: 4, Y: 2, Width: 10, Height: 2}, l.Bounds())
}

func TestRelayoutBreaksLongWordsAnywhere(t *testing.T) {
	l := New(CellFont{}, "abcdefghijkl", Options{})
	require.Equal(t, 3, l.Relayout(Point{}, 5))
	require.Equal(t, []string{"abcde", "fghij", "kl"}, lineTexts(l))
}

func TestRelayoutEmptyTextKeepsOneLine(t *testing.T) {
	l := New(CellFont{}, "", Options{})
	require.Equal(t, 1, l.Relayout(Point{}, 20))
	require.Equal(t, []string{""}, lineTexts(l))
}

func TestRelayoutIsStableForSameWidth(t *testing.T) {
	l := New(CellFont{}, "lorem ipsum dolor sit amet consectetur", Options{})
	first := l.Relayout(Point{}, 12)
	firstLines := lineTexts(l)
	second := l.Relayout(Point{}, 12)

	require.Equal(t, first, second)
	require.Equal(t, firstLines, lineTexts(l))
}

func TestRightAlignAndNoWrap(t *testing.T) {
	l := New(CellFont{}, "12:30", Options{Align: AlignRight, Wrap: NoWrap})
	require.Equal(t, 1, l.Relayout(Point{X: 3}, 20))
	require.Equal(t, 18, l.Lines()[0].X)

	long := New(CellFont{}, "no wrapping here at all", Options{Wrap: NoWrap})
	require.Equal(t, 1, long.Relayout(Point{}, 4))
}

func TestClearDropsLines(t *testing.T) {
	l := New(CellFont{}, "hello", Options{})
	l.Relayout(Point{}, 10)
	l.Clear()
	require.Empty(t, l.Lines())
	require.True(t, l.Bounds().Empty())
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 1, Y: 1, Width: 2, Height: 2}
	b := Rect{X: 4, Y: 0, Width: 1, Height: 5}
	require.Equal(t, Rect{X: 1, Y: 0, Width: 4, Height: 5}, a.Union(b))
	require.Equal(t, a, a.Union(Rect{}))
}

type wideFont struct{}

func (wideFont) Height() int             { return 8 }
func (wideFont) Leading() int            { return 2 }
func (wideFont) LineSpacing() int        { return 10 }
func (wideFont) Advance(text string) int { return 6 * CellFont{}.Advance(text) }

func TestRelayoutUsesFontColumns(t *testing.T) {
	l := New(wideFont{}, "the quick brown fox", Options{})
	n := l.Relayout(Point{}, 60)

	require.Equal(t, 2, n)
	require.Equal(t, []string{"the quick", "brown fox"}, lineTexts(l))
	require.Equal(t, 54, l.Lines()[0].Width)
	require.Equal(t, 10, l.Lines()[1].Y)
	require.Equal(t, 20, l.Bounds().Height)
}
