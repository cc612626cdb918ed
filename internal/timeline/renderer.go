package timeline

import "github.com/tOgg1/roomview/internal/textlayout"

// Tone is a block background.
type Tone int

const (
	TonePrimary Tone = iota
	ToneSecondary
)

// TextRole tells the canvas how to style a layout.
type TextRole int

const (
	RoleHeader TextRole = iota
	RoleBody
)

// Canvas receives the drawing operations of a paint pass. Layout coordinates
// are relative to the block; offset is the block's top-left corner.
type Canvas interface {
	FillBand(r textlayout.Rect, tone Tone)
	DrawAvatar(at textlayout.Point, size int, avatar *Avatar)
	DrawText(l *textlayout.Layout, offset textlayout.Point, role TextRole)
}

// PaintStats summarizes a paint pass.
type PaintStats struct {
	// Visited counts blocks walked before the pass stopped.
	Visited int
	// Painted counts blocks at least partly inside the viewport.
	Painted int
}

// BandFor is the background of the block at drawIndex, counting from the
// newest block. seed flips on every live block so bands do not shift under
// the reader as messages arrive.
func BandFor(seed bool, drawIndex int) Tone {
	if seed != (drawIndex%2 == 1) {
		return ToneSecondary
	}
	return TonePrimary
}

// Renderer paints the visible part of a BatchStore.
type Renderer struct {
	store   *BatchStore
	metrics Metrics
}

func NewRenderer(store *BatchStore, m Metrics) *Renderer {
	return &Renderer{store: store, metrics: m}
}

// Paint walks blocks from the newest upward. The newest block's bottom sits
// Max-Value below the viewport bottom, so scrolling up moves content down.
// The walk stops at the first block whose bottom is above the viewport.
func (r *Renderer) Paint(c Canvas, viewport textlayout.Rect, bar Scrollbar, seed bool) PaintStats {
	var stats PaintStats
	y := viewport.Bottom() + (bar.Max - bar.Value)
	index := 0

	r.store.EachNewestFirst(func(b *Block) bool {
		h := b.Height()
		y -= h
		if y+h < viewport.Y {
			return false
		}
		stats.Visited++
		if y < viewport.Bottom() {
			r.paintBlock(c, b, textlayout.Point{X: viewport.X, Y: y}, viewport.Width, BandFor(seed, index))
			stats.Painted++
		}
		y -= r.metrics.Spacing
		index++
		return true
	})
	return stats
}

func (r *Renderer) paintBlock(c Canvas, b *Block, offset textlayout.Point, width int, tone Tone) {
	c.FillBand(textlayout.Rect{X: offset.X, Y: offset.Y, Width: width, Height: b.Height()}, tone)
	if b.Avatar != nil {
		c.DrawAvatar(textlayout.Point{X: offset.X + r.metrics.Margin, Y: offset.Y}, r.metrics.AvatarSize, b.Avatar)
	}
	b.Layouts(func(l *textlayout.Layout, header bool) {
		role := RoleBody
		if header {
			role = RoleHeader
		}
		c.DrawText(l, offset, role)
	})
}
