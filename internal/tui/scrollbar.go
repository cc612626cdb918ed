package tui

import (
	"github.com/tOgg1/roomview/internal/timeline"
	"github.com/tOgg1/roomview/internal/tui/styles"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "█"
)

// thumb returns the top row and height of the scrollbar thumb for a track
// of rows cells. The scroll range covers Max+rows units with the view
// starting at Value. ok is false when everything fits.
func thumb(bar timeline.Scrollbar, rows int) (top, size int, ok bool) {
	total := bar.Max + rows
	if rows <= 0 || bar.Max <= 0 {
		return 0, 0, false
	}

	size = rows * rows / total
	if size < 1 {
		size = 1
	}
	if size > rows {
		size = rows
	}

	top = bar.Value * (rows - size) / bar.Max
	if top+size > rows {
		top = rows - size
	}
	if top < 0 {
		top = 0
	}
	return top, size, true
}

// scrollbarColumn renders one styled cell per row. When the content fits the
// column is blank.
func scrollbarColumn(bar timeline.Scrollbar, rows int, theme styles.Theme) []string {
	if rows <= 0 {
		return nil
	}
	out := make([]string, rows)
	top, size, ok := thumb(bar, rows)
	for i := range out {
		switch {
		case !ok:
			out[i] = " "
		case i >= top && i < top+size:
			out[i] = theme.ScrollbarThumbStyle().Render(scrollThumbChar)
		default:
			out[i] = theme.ScrollbarTrackStyle().Render(scrollTrackChar)
		}
	}
	return out
}
