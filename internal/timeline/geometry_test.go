package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerPageStepFromUnits(t *testing.T) {
	tr := NewTracker(0, 53)
	tr.OnResize(800, 400, nil)

	bar := tr.Scrollbar()
	require.Equal(t, 318, bar.PageStep)
	require.Equal(t, DefaultSingleStep, bar.SingleStep)
	require.Equal(t, 200, tr.TriggerMargin())

	tr.OnResize(800, 40, nil)
	require.Equal(t, 0, tr.Scrollbar().PageStep)
}

func TestTrackerRangeIncludesTriggerMargin(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)

	tr.OnGeometryChanged(100, Append)
	require.Equal(t, 0, tr.Scrollbar().Max)

	tr.OnGeometryChanged(900, Append)
	require.Equal(t, 1000, tr.ContentHeight())
	require.Equal(t, 800, tr.Scrollbar().Max)
	require.True(t, tr.AtBottom())
}

func TestTrackerAppendKeepsPinnedOrPosition(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)
	tr.OnGeometryChanged(1000, Append)
	require.Equal(t, 800, tr.Scrollbar().Value)

	tr.OnGeometryChanged(50, Append)
	require.Equal(t, 850, tr.Scrollbar().Value)

	tr.ScrollTo(300)
	tr.OnGeometryChanged(100, Append)
	require.Equal(t, 950, tr.Scrollbar().Max)
	require.Equal(t, 300, tr.Scrollbar().Value)
}

func TestTrackerPrependShiftsByInsertedHeight(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)
	tr.OnGeometryChanged(1000, Append)
	tr.ScrollTo(120)

	tr.OnGeometryChanged(340, Prepend)
	require.Equal(t, 460, tr.Scrollbar().Value)
	require.Equal(t, 1140, tr.Scrollbar().Max)
}

func TestTrackerPrependWhilePinnedStaysPinned(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)
	tr.OnGeometryChanged(1000, Append)

	tr.OnGeometryChanged(340, Prepend)
	require.True(t, tr.AtBottom())
	require.Equal(t, 1140, tr.Scrollbar().Value)
}

func TestTrackerResizeReflowsOnlyOnWidthChange(t *testing.T) {
	tr := NewTracker(20, 53)
	reflows := 0
	reflow := func(width int) int {
		reflows++
		return width
	}

	tr.OnResize(800, 400, reflow)
	require.Equal(t, 1, reflows)
	require.Equal(t, 800, tr.ContentHeight())

	tr.OnResize(800, 600, reflow)
	require.Equal(t, 1, reflows)

	tr.OnResize(1000, 600, reflow)
	require.Equal(t, 2, reflows)
	require.Equal(t, 1000, tr.ContentHeight())
}

func TestTrackerResizePreservesUnpinnedValue(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)
	tr.OnGeometryChanged(1000, Append)
	tr.ScrollTo(400)

	tr.OnResize(800, 600, nil)
	require.Equal(t, 700, tr.Scrollbar().Max)
	require.Equal(t, 400, tr.Scrollbar().Value)

	tr.OnResize(800, 1400, nil)
	require.Equal(t, 300, tr.Scrollbar().Max)
	require.Equal(t, 300, tr.Scrollbar().Value)
}

func TestTrackerScrollOperationsClamp(t *testing.T) {
	tr := NewTracker(20, 53)
	tr.OnResize(800, 400, nil)
	tr.OnGeometryChanged(1200, Append)
	require.Equal(t, 1000, tr.Scrollbar().Value)

	tr.PageUp()
	require.Equal(t, 682, tr.Scrollbar().Value)
	tr.StepUp(2)
	require.Equal(t, 642, tr.Scrollbar().Value)
	tr.StepDown(1)
	require.Equal(t, 662, tr.Scrollbar().Value)
	tr.PageDown()
	require.Equal(t, 980, tr.Scrollbar().Value)

	tr.ScrollTo(5000)
	require.Equal(t, 1000, tr.Scrollbar().Value)
	tr.ScrollBy(-5000)
	require.Equal(t, 0, tr.Scrollbar().Value)
	require.False(t, tr.AtBottom())

	tr.ToBottom()
	require.True(t, tr.AtBottom())
}
