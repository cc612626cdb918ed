package timeline

// DefaultSingleStep is the scroll distance of one wheel notch or arrow key.
const DefaultSingleStep = 20

// Scrollbar is the virtual vertical scroll range over the content.
type Scrollbar struct {
	Value      int
	Max        int
	PageStep   int
	SingleStep int
}

// Pinned reports whether the view follows the live edge.
func (s Scrollbar) Pinned() bool { return s.Value == s.Max }

// Position says where content was added.
type Position int

const (
	Append Position = iota
	Prepend
)

// Tracker keeps the running content height and reconciles the scroll range
// with it. The range is inflated by a trigger margin of half a viewport so
// the user can scroll past the oldest content and ask for more.
type Tracker struct {
	bar     Scrollbar
	content int
	width   int
	height  int
	unit    int
}

// NewTracker returns a tracker. unit is the page step granularity: one avatar
// plus the block spacing.
func NewTracker(singleStep, unit int) *Tracker {
	if singleStep <= 0 {
		singleStep = DefaultSingleStep
	}
	if unit <= 0 {
		unit = 1
	}
	return &Tracker{bar: Scrollbar{SingleStep: singleStep}, unit: unit}
}

func (t *Tracker) Scrollbar() Scrollbar { return t.bar }

func (t *Tracker) ContentHeight() int { return t.content }

func (t *Tracker) ViewportWidth() int { return t.width }

func (t *Tracker) ViewportHeight() int { return t.height }

// TriggerMargin is the distance from the top of the range within which more
// history is wanted.
func (t *Tracker) TriggerMargin() int { return t.height / 2 }

// OnGeometryChanged adds delta to the content height. A pinned view stays
// pinned. A prepend otherwise shifts the value by the growth of the range so
// the visible content stays put.
func (t *Tracker) OnGeometryChanged(delta int, pos Position) {
	t.content += delta
	t.updateRange(pos == Prepend)
}

// OnResize applies a new viewport size. When the width changed, reflow must
// lay out every block again and return the new content height.
func (t *Tracker) OnResize(width, height int, reflow func(width int) int) {
	widthChanged := width != t.width
	t.width = width
	t.height = height

	windowUnits := height / t.unit
	t.bar.PageStep = (windowUnits - 1) * t.unit
	if t.bar.PageStep < 0 {
		t.bar.PageStep = 0
	}

	if widthChanged && reflow != nil {
		t.content = reflow(width)
	}
	t.updateRange(false)
}

func (t *Tracker) updateRange(forPrepend bool) {
	pinned := t.bar.Value == t.bar.Max
	oldMax := t.bar.Max

	inflated := t.content + t.TriggerMargin()
	if t.height > inflated {
		t.bar.Max = 0
	} else {
		t.bar.Max = inflated - t.height
	}

	switch {
	case pinned:
		t.bar.Value = t.bar.Max
	case forPrepend:
		t.bar.Value += t.bar.Max - oldMax
	}
	t.clamp()
}

func (t *Tracker) clamp() {
	if t.bar.Value > t.bar.Max {
		t.bar.Value = t.bar.Max
	}
	if t.bar.Value < 0 {
		t.bar.Value = 0
	}
}

func (t *Tracker) ScrollTo(value int) {
	t.bar.Value = value
	t.clamp()
}

func (t *Tracker) ScrollBy(delta int) { t.ScrollTo(t.bar.Value + delta) }

func (t *Tracker) StepUp(n int) { t.ScrollBy(-n * t.bar.SingleStep) }

func (t *Tracker) StepDown(n int) { t.ScrollBy(n * t.bar.SingleStep) }

func (t *Tracker) PageUp() { t.ScrollBy(-t.page()) }

func (t *Tracker) PageDown() { t.ScrollBy(t.page()) }

func (t *Tracker) ToBottom() { t.bar.Value = t.bar.Max }

func (t *Tracker) AtBottom() bool { return t.bar.Pinned() }

func (t *Tracker) page() int {
	if t.bar.PageStep > 0 {
		return t.bar.PageStep
	}
	return t.bar.SingleStep
}
