package timeline

import (
	"time"

	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/textlayout"
)

// StateView resolves senders to display names at some point in history.
// *room.State implements it.
type StateView interface {
	Member(userID string) (room.Member, bool)
	MemberName(m room.Member) string
}

// MergePolicy decides whether consecutive events from one sender share a
// block.
type MergePolicy int

const (
	// MergeNever gives every event its own block.
	MergeNever MergePolicy = iota
	// MergeConsecutive adds an event to the adjacent block when the sender
	// matches.
	MergeConsecutive
)

// ParseMergePolicy maps a config value to a policy. Unknown values mean
// MergeNever.
func ParseMergePolicy(value string) MergePolicy {
	if value == "consecutive" {
		return MergeConsecutive
	}
	return MergeNever
}

func (p MergePolicy) String() string {
	if p == MergeConsecutive {
		return "consecutive"
	}
	return "never"
}

// Metrics are the fixed block dimensions derived from the font.
type Metrics struct {
	Margin     int
	Spacing    int
	AvatarSize int
}

// Block is a run of one sender's events under a single name and time header.
type Block struct {
	SenderID string
	Avatar   *Avatar
	Events   []*EventRecord

	name   *textlayout.Layout
	stamp  *textlayout.Layout
	height int
	width  int
}

// Height is the block height at the width of the last layout.
func (b *Block) Height() int { return b.height }

// Width is the available width the block was last laid out for.
func (b *Block) Width() int { return b.width }

func (b *Block) Name() string { return b.name.Text() }

func (b *Block) TimeLabel() string { return b.stamp.Text() }

// TimeVisible reports whether the time label fit beside the name at the
// current width.
func (b *Block) TimeVisible() bool {
	return len(b.stamp.Lines()) > 0
}

// Layouts calls fn for the header and every body line layout.
func (b *Block) Layouts(fn func(l *textlayout.Layout, header bool)) {
	fn(b.name, true)
	fn(b.stamp, true)
	for _, rec := range b.Events {
		for _, line := range rec.Lines {
			fn(line, false)
		}
	}
}

// EngineOptions configure an Engine. Zero margin and spacing fall back to a
// third of the font's line spacing.
type EngineOptions struct {
	Font         textlayout.Font
	BlockMargin  int
	BlockSpacing int
	Location     *time.Location
	Avatars      AvatarSource
}

// Engine turns events into measured blocks.
type Engine struct {
	font    textlayout.Font
	metrics Metrics
	loc     *time.Location
	avatars AvatarSource
}

func NewEngine(opts EngineOptions) *Engine {
	font := opts.Font
	if font == nil {
		font = textlayout.CellFont{}
	}
	third := font.LineSpacing() / 3
	margin := opts.BlockMargin
	if margin <= 0 {
		margin = third
	}
	spacing := opts.BlockSpacing
	if spacing <= 0 {
		spacing = third
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		font: font,
		metrics: Metrics{
			Margin:     margin,
			Spacing:    spacing,
			AvatarSize: 2*font.Height() + font.Leading(),
		},
		loc:     loc,
		avatars: opts.Avatars,
	}
}

func (e *Engine) Metrics() Metrics { return e.metrics }

func (e *Engine) Font() textlayout.Font { return e.font }

// Materialize builds a block for ev laid out for width. The name comes from
// state and is empty for unknown senders.
func (e *Engine) Materialize(state StateView, ev room.Event, width int) *Block {
	name := ""
	if state != nil {
		if member, ok := state.Member(ev.Sender); ok {
			name = state.MemberName(member)
		}
	}

	rec := newEventRecord(e.font, ev)
	b := &Block{
		SenderID: ev.Sender,
		Events:   []*EventRecord{rec},
		name: textlayout.New(e.font, name, textlayout.Options{
			Align: textlayout.AlignLeft,
			Wrap:  textlayout.WrapWordOrAnywhere,
		}),
		stamp: textlayout.New(e.font, e.timeLabel(rec.Time), textlayout.Options{
			Align: textlayout.AlignRight,
			Wrap:  textlayout.NoWrap,
		}),
	}
	if e.avatars != nil {
		b.Avatar = e.avatars.Avatar(ev.Sender, name)
	}
	e.Relayout(b, width)
	return b
}

// AppendEvent adds ev at the end of b and returns the height change.
func (e *Engine) AppendEvent(b *Block, ev room.Event) int {
	before := b.height
	b.Events = append(b.Events, newEventRecord(e.font, ev))
	return e.Relayout(b, b.width) - before
}

// PrependEvent adds ev at the start of b and returns the height change. The
// time label follows the new first event.
func (e *Engine) PrependEvent(b *Block, ev room.Event) int {
	before := b.height
	rec := newEventRecord(e.font, ev)
	b.Events = append([]*EventRecord{rec}, b.Events...)
	b.stamp.SetText(e.timeLabel(rec.Time))
	return e.Relayout(b, b.width) - before
}

// Relayout breaks every line of b for width and returns the new height.
// Lines are stacked from the top of the block: the name, then each event's
// lines in order. The time label shares the name's first row and is dropped
// when it would overlap the name.
func (e *Engine) Relayout(b *Block, width int) int {
	m := e.metrics
	spacing := e.font.LineSpacing()
	lineStart := m.AvatarSize + 2*m.Margin
	lineWidth := width - (lineStart + m.Margin)
	if lineWidth < 1 {
		lineWidth = 1
	}

	y := 0
	y += b.name.Relayout(textlayout.Point{X: lineStart, Y: y}, lineWidth) * spacing

	b.stamp.Relayout(textlayout.Point{X: lineStart, Y: 0}, lineWidth)
	if e.font.Advance(b.name.Text()) > lineWidth-e.font.Advance(b.stamp.Text()) {
		b.stamp.Clear()
	}

	for _, rec := range b.Events {
		for _, line := range rec.Lines {
			y += line.Relayout(textlayout.Point{X: lineStart, Y: y}, lineWidth) * spacing
		}
	}

	b.height = y
	b.width = width
	return y
}

func (e *Engine) timeLabel(t time.Time) string {
	return t.In(e.loc).Format("15:04")
}
