package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/roomview/internal/textlayout"
	"github.com/tOgg1/roomview/internal/timeline"
	"github.com/tOgg1/roomview/internal/tui/styles"
)

func TestCellCanvasDrawsClippedText(t *testing.T) {
	theme := styles.DefaultTheme
	c := newCellCanvas(10, 3, theme, styles.NewAgentColorMapper(nil))

	c.FillBand(textlayout.Rect{X: 0, Y: -1, Width: 10, Height: 3}, timeline.ToneSecondary)
	require.Equal(t, theme.Band.Secondary, c.rows[0][0].bg)
	require.Equal(t, theme.Base.Background, c.rows[2][0].bg)

	l := textlayout.New(textlayout.CellFont{}, "hello world", textlayout.Options{Wrap: textlayout.NoWrap})
	l.Relayout(textlayout.Point{X: 2}, 20)
	c.DrawText(l, textlayout.Point{Y: 1}, timeline.RoleBody)

	require.Equal(t, "  hello wo", c.Text(1))
	require.Equal(t, theme.Band.Secondary, c.rows[1][3].bg)
	require.Equal(t, theme.Text.Body, c.rows[1][3].fg)
}

func TestCellCanvasWideRunes(t *testing.T) {
	c := newCellCanvas(5, 1, styles.DefaultTheme, styles.NewAgentColorMapper(nil))
	l := textlayout.New(textlayout.CellFont{}, "世界!", textlayout.Options{})
	l.Relayout(textlayout.Point{}, 5)
	c.DrawText(l, textlayout.Point{}, timeline.RoleHeader)

	require.Equal(t, "世界!", c.Text(0))
	require.Equal(t, "", c.rows[0][1].ch)
	require.True(t, c.rows[0][0].bold)
	require.Len(t, c.Render(), 1)
}

func TestCellCanvasAvatar(t *testing.T) {
	c := newCellCanvas(4, 3, styles.DefaultTheme, styles.NewAgentColorMapper(nil))
	c.DrawAvatar(textlayout.Point{X: 1, Y: 1}, 2, &timeline.Avatar{UserID: "@bob:local", Initials: "BOB", Color: "15"})

	require.Equal(t, " BO ", c.Text(1))
	require.Equal(t, "15", c.rows[2][2].bg)
	require.Equal(t, "16", c.rows[1][1].fg)
	require.Equal(t, styles.DefaultTheme.Base.Background, c.rows[0][1].bg)
}

func TestThumb(t *testing.T) {
	_, _, ok := thumb(timeline.Scrollbar{Max: 0}, 10)
	require.False(t, ok)

	top, size, ok := thumb(timeline.Scrollbar{Value: 0, Max: 10}, 10)
	require.True(t, ok)
	require.Equal(t, 0, top)
	require.Equal(t, 5, size)

	top, _, _ = thumb(timeline.Scrollbar{Value: 10, Max: 10}, 10)
	require.Equal(t, 5, top)

	top, size, _ = thumb(timeline.Scrollbar{Value: 500, Max: 1000}, 10)
	require.Equal(t, 1, size)
	require.Equal(t, 4, top)

	require.Len(t, scrollbarColumn(timeline.Scrollbar{Max: 10}, 4, styles.DefaultTheme), 4)
	require.Nil(t, scrollbarColumn(timeline.Scrollbar{}, 0, styles.DefaultTheme))
}
