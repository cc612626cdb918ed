// Package timeline materializes a room's events into measured blocks, keeps
// the scroll geometry exact as history is appended and prepended, and decides
// when to page in older history.
//
// A Timeline is not safe for concurrent use. The host calls it from one
// goroutine; the only work meant to run elsewhere is Fetch.Do, whose result
// comes back through ApplyBacklog.
package timeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/roomview/internal/logging"
	"github.com/tOgg1/roomview/internal/metrics"
	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/textlayout"
)

// Options configure a Timeline.
type Options struct {
	// RoomID labels log lines.
	RoomID string
	// Source serves backlog pages. Without one the timeline never paginates.
	Source room.Source
	// History is the room state at the oldest loaded event. It is cloned and
	// rewound once per backlog event so names resolve as they were.
	History *room.State

	Font         textlayout.Font
	PageSize     int
	Merge        MergePolicy
	BlockMargin  int
	BlockSpacing int
	SingleStep   int
	Location     *time.Location
	Avatars      AvatarSource
}

// Timeline is a room's materialized, scrollable history.
type Timeline struct {
	engine   *Engine
	store    *BatchStore
	tracker  *Tracker
	pager    *Paginator
	renderer *Renderer
	history  *room.State
	merge    MergePolicy
	bandSeed bool
	repaint  chan struct{}
	logger   zerolog.Logger
}

func New(opts Options) *Timeline {
	logger := logging.WithRoom("timeline", opts.RoomID)
	engine := NewEngine(EngineOptions{
		Font:         opts.Font,
		BlockMargin:  opts.BlockMargin,
		BlockSpacing: opts.BlockSpacing,
		Location:     opts.Location,
		Avatars:      opts.Avatars,
	})
	m := engine.Metrics()
	store := NewBatchStore()
	return &Timeline{
		engine:   engine,
		store:    store,
		tracker:  NewTracker(opts.SingleStep, m.AvatarSize+m.Spacing),
		pager:    NewPaginator(opts.Source, opts.PageSize, logging.WithRoom("paginator", opts.RoomID)),
		renderer: NewRenderer(store, m),
		history:  opts.History.Clone(),
		merge:    opts.Merge,
		bandSeed: true,
		repaint:  make(chan struct{}, 1),
		logger:   logger,
	}
}

// Repaint delivers a value whenever the timeline changed since the last
// receive. Signals coalesce.
func (t *Timeline) Repaint() <-chan struct{} { return t.repaint }

func (t *Timeline) markDirty() {
	select {
	case t.repaint <- struct{}{}:
	default:
	}
}

func (t *Timeline) Scrollbar() Scrollbar { return t.tracker.Scrollbar() }

func (t *Timeline) ContentHeight() int { return t.tracker.ContentHeight() }

func (t *Timeline) TriggerMargin() int { return t.tracker.TriggerMargin() }

func (t *Timeline) Metrics() Metrics { return t.engine.Metrics() }

func (t *Timeline) State() PaginatorState { return t.pager.State() }

func (t *Timeline) LastError() error { return t.pager.LastError() }

func (t *Timeline) OldestToken() string { return t.store.OldestToken() }

func (t *Timeline) Batches() int { return t.store.Batches() }

func (t *Timeline) Blocks() int { return t.store.Blocks() }

func (t *Timeline) BatchTokens() []string { return t.store.OlderTokens() }

// PushBack adds a live event at the newest end. state resolves the sender's
// name as of the event.
func (t *Timeline) PushBack(state StateView, ev room.Event) {
	t.pager.Observe(ev)
	metrics.LiveEvents.Inc()

	if t.merge == MergeConsecutive {
		if last, ok := t.store.NewestBlock(); ok && last.SenderID == ev.Sender {
			t.grow(t.engine.AppendEvent(last, ev), Append)
			return
		}
	}

	block := t.engine.Materialize(state, ev, t.tracker.ViewportWidth())
	t.store.AppendLive(block)
	t.bandSeed = !t.bandSeed
	metrics.BlocksMaterialized.WithLabelValues(metrics.OriginLive).Inc()
	t.grow(block.Height()+t.engine.Metrics().Spacing, Append)
}

// EndBatch marks a live sync boundary.
func (t *Timeline) EndBatch(token string) {
	t.store.CloseBatch(token)
}

func (t *Timeline) grow(delta int, pos Position) {
	t.tracker.OnGeometryChanged(delta, pos)
	metrics.ContentHeight.Set(float64(t.tracker.ContentHeight()))
	t.markDirty()
}

// Resize applies a new viewport size, reflowing every block when the width
// changed.
func (t *Timeline) Resize(width, height int) *Fetch {
	t.tracker.OnResize(width, height, t.reflow)
	metrics.ContentHeight.Set(float64(t.tracker.ContentHeight()))
	t.markDirty()
	return t.GrowBacklog()
}

func (t *Timeline) reflow(width int) int {
	spacing := t.engine.Metrics().Spacing
	total := 0
	t.store.EachBlock(func(b *Block) {
		total += t.engine.Relayout(b, width) + spacing
	})
	metrics.Reflows.Inc()
	t.logger.Debug().Int("width", width).Int("blocks", t.store.Blocks()).Int("content_height", total).Msg("reflowed")
	return total
}

// ScrollTo moves the view and returns a backlog fetch if one is now due.
func (t *Timeline) ScrollTo(value int) *Fetch {
	t.tracker.ScrollTo(value)
	return t.scrolled()
}

func (t *Timeline) ScrollBy(delta int) *Fetch {
	t.tracker.ScrollBy(delta)
	return t.scrolled()
}

// StepUp scrolls n single steps toward older content.
func (t *Timeline) StepUp(n int) *Fetch {
	t.tracker.StepUp(n)
	return t.scrolled()
}

func (t *Timeline) StepDown(n int) *Fetch {
	t.tracker.StepDown(n)
	return t.scrolled()
}

func (t *Timeline) PageUp() *Fetch {
	t.tracker.PageUp()
	return t.scrolled()
}

func (t *Timeline) PageDown() *Fetch {
	t.tracker.PageDown()
	return t.scrolled()
}

func (t *Timeline) ToBottom() *Fetch {
	t.tracker.ToBottom()
	return t.scrolled()
}

func (t *Timeline) AtBottom() bool { return t.tracker.AtBottom() }

func (t *Timeline) scrolled() *Fetch {
	t.markDirty()
	return t.GrowBacklog()
}

// GrowBacklog returns a fetch for the next older page when the view is near
// the top of the range, no fetch is outstanding, and history remains.
func (t *Timeline) GrowBacklog() *Fetch {
	bar := t.tracker.Scrollbar()
	return t.pager.Check(bar.Value, t.tracker.TriggerMargin(), t.store.OldestToken())
}

// ApplyBacklog merges a finished fetch. Events arrive newest first and end
// up oldest first in a new oldest batch. A failure leaves the token in place
// and is returned; the next scroll near the top retries. On success the
// trigger is checked again, since one page may not fill the view.
func (t *Timeline) ApplyBacklog(res FetchResult) (*Fetch, error) {
	if err := t.pager.complete(res); err != nil {
		t.markDirty()
		return nil, err
	}
	events := res.Page.Events
	if len(events) == 0 {
		t.markDirty()
		return nil, nil
	}

	width := t.tracker.ViewportWidth()
	spacing := t.engine.Metrics().Spacing
	var built deque[*Block]
	var deltas []int
	for _, ev := range events {
		if t.merge == MergeConsecutive {
			if first, ok := built.Front(); ok && first.SenderID == ev.Sender {
				deltas = append(deltas, t.engine.PrependEvent(first, ev))
				t.history.Revert(ev)
				t.pager.Observe(ev)
				continue
			}
		}
		block := t.engine.Materialize(t.history, ev, width)
		built.PushFront(block)
		deltas = append(deltas, block.Height()+spacing)
		t.history.Revert(ev)
		t.pager.Observe(ev)
	}

	blocks := make([]*Block, 0, built.Len())
	built.Each(func(b *Block) bool {
		blocks = append(blocks, b)
		return true
	})
	t.store.PrependBatch(res.From, res.Page.End, blocks)
	metrics.BlocksMaterialized.WithLabelValues(metrics.OriginBacklog).Add(float64(len(blocks)))

	for _, delta := range deltas {
		t.tracker.OnGeometryChanged(delta, Prepend)
	}
	metrics.ContentHeight.Set(float64(t.tracker.ContentHeight()))
	t.markDirty()

	t.logger.Debug().
		Int("events", len(events)).
		Int("blocks", len(blocks)).
		Str("older", res.Page.End).
		Dur("took", res.Duration).
		Msg("backlog grew")

	return t.GrowBacklog(), nil
}

// Paint draws the visible blocks onto c.
func (t *Timeline) Paint(c Canvas, viewport textlayout.Rect) PaintStats {
	return t.renderer.Paint(c, viewport, t.tracker.Scrollbar(), t.bandSeed)
}
