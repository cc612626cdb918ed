package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tOgg1/roomview/internal/textlayout"
	"github.com/tOgg1/roomview/internal/timeline"
	"github.com/tOgg1/roomview/internal/tui/styles"
)

// cell is one terminal cell. A wide rune occupies its cell and marks the
// next one as a continuation with an empty ch.
type cell struct {
	ch   string
	fg   string
	bg   string
	bold bool
}

// cellCanvas is a timeline.Canvas backed by a grid of terminal cells.
type cellCanvas struct {
	width  int
	height int
	rows   [][]cell
	theme  styles.Theme
	colors *styles.AgentColorMapper
}

var _ timeline.Canvas = (*cellCanvas)(nil)

func newCellCanvas(width, height int, theme styles.Theme, colors *styles.AgentColorMapper) *cellCanvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &cellCanvas{width: width, height: height, theme: theme, colors: colors}
	c.rows = make([][]cell, height)
	for y := range c.rows {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{ch: " ", fg: theme.Base.Foreground, bg: theme.Base.Background}
		}
		c.rows[y] = row
	}
	return c
}

func (c *cellCanvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return nil
	}
	return &c.rows[y][x]
}

func (c *cellCanvas) FillBand(r textlayout.Rect, tone timeline.Tone) {
	bg := c.theme.Band.Primary
	if tone == timeline.ToneSecondary {
		bg = c.theme.Band.Secondary
	}
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if cl := c.at(x, y); cl != nil {
				*cl = cell{ch: " ", fg: c.theme.Text.Body, bg: bg}
			}
		}
	}
}

// DrawAvatar paints a size by size square in the sender's color with the
// initials on its first row.
func (c *cellCanvas) DrawAvatar(at textlayout.Point, size int, avatar *timeline.Avatar) {
	if avatar == nil || size <= 0 {
		return
	}
	bg := avatar.Color
	if bg == "" {
		bg = c.colors.ColorCode(avatar.UserID)
	}
	fg := styles.ContrastingTextColor(bg)
	for y := at.Y; y < at.Y+size; y++ {
		for x := at.X; x < at.X+size; x++ {
			if cl := c.at(x, y); cl != nil {
				*cl = cell{ch: " ", fg: fg, bg: bg, bold: true}
			}
		}
	}
	c.put(at.X, at.Y, at.X+size, runewidth.Truncate(avatar.Initials, size, ""), fg, true)
}

func (c *cellCanvas) DrawText(l *textlayout.Layout, offset textlayout.Point, role timeline.TextRole) {
	fg := c.theme.Text.Body
	bold := false
	if role == timeline.RoleHeader {
		fg = c.theme.Text.Header
		bold = true
	}
	for _, line := range l.Lines() {
		c.put(offset.X+line.X, offset.Y+line.Y, c.width, line.Text, fg, bold)
	}
}

// put writes text from (x, y) keeping each cell's background. Runes that
// would cross limit are dropped.
func (c *cellCanvas) put(x, y, limit int, text, fg string, bold bool) {
	if y < 0 || y >= c.height {
		return
	}
	if limit > c.width {
		limit = c.width
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > limit {
			return
		}
		if cl := c.at(x, y); cl != nil {
			cl.ch = string(r)
			cl.fg = fg
			cl.bold = bold
		}
		for i := 1; i < w; i++ {
			if cl := c.at(x+i, y); cl != nil {
				cl.ch = ""
			}
		}
		x += w
	}
}

// Text returns the plain characters of row y, for tests.
func (c *cellCanvas) Text(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var b strings.Builder
	for _, cl := range c.rows[y] {
		b.WriteString(cl.ch)
	}
	return b.String()
}

// Render styles the grid run by run.
func (c *cellCanvas) Render() []string {
	out := make([]string, c.height)
	for y, row := range c.rows {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && sameStyle(row[x], row[start]) {
				continue
			}
			b.WriteString(runStyle(row[start]).Render(joinCells(row[start:x])))
			start = x
		}
		out[y] = b.String()
	}
	return out
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.bold == b.bold
}

func runStyle(cl cell) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(cl.fg)).
		Background(lipgloss.Color(cl.bg)).
		Bold(cl.bold)
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, cl := range cells {
		b.WriteString(cl.ch)
	}
	return b.String()
}
