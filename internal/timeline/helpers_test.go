package timeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/textlayout"
)

// pixelFont is a monospaced font with pixel metrics: margin and spacing
// derive to 8 and the avatar to 45, so a one line message with a one line
// name is 50 high.
type pixelFont struct{}

func (pixelFont) Height() int      { return 20 }
func (pixelFont) Leading() int     { return 5 }
func (pixelFont) LineSpacing() int { return 25 }

func (pixelFont) Advance(text string) int {
	return 10 * runewidth.StringWidth(text)
}

var baseTime = time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)

func msg(id, sender, body string) room.Event {
	n, _ := strconv.Atoi(strings.TrimLeft(id, "abcdefghijklmnopqrstuvwxyz$-"))
	return room.Event{
		ID:             id,
		Type:           room.EventTypeMessage,
		Sender:         sender,
		Body:           body,
		OriginServerTS: baseTime.Add(time.Duration(n) * time.Minute).UnixMilli(),
	}
}

func createEvent(id, sender string) room.Event {
	return room.Event{ID: id, Type: room.EventTypeCreate, Sender: sender, OriginServerTS: baseTime.UnixMilli()}
}

func testState() *room.State {
	state := room.NewState()
	state.Apply(room.Event{Type: room.EventTypeMember, Sender: "@alice:local", Member: &room.MemberContent{Membership: room.MembershipJoin, DisplayName: "Alice"}})
	state.Apply(room.Event{Type: room.EventTypeMember, Sender: "@bob:local", Member: &room.MemberContent{Membership: room.MembershipJoin, DisplayName: "Bob"}})
	return state
}

type fakeCall struct {
	Dir   room.Direction
	Token string
	Limit int
}

// fakeSource serves backward pages over events held oldest first. Event i
// has sequence i+1 and tokens are "s<seq>".
type fakeSource struct {
	events []room.Event
	calls  []fakeCall
	err    error
}

func newFakeSource(events ...room.Event) *fakeSource {
	return &fakeSource{events: events}
}

// chatSource returns a source of n messages alternating between two senders.
func chatSource(n int) *fakeSource {
	src := &fakeSource{}
	for i := 1; i <= n; i++ {
		sender := "@alice:local"
		if i%2 == 0 {
			sender = "@bob:local"
		}
		src.events = append(src.events, msg(fmt.Sprintf("e%d", i), sender, fmt.Sprintf("message %d", i)))
	}
	return src
}

func (f *fakeSource) liveToken() string {
	return fmt.Sprintf("s%d", len(f.events)+1)
}

func (f *fakeSource) Messages(_ context.Context, dir room.Direction, token string, limit int) (room.Page, error) {
	f.calls = append(f.calls, fakeCall{Dir: dir, Token: token, Limit: limit})
	if f.err != nil {
		return room.Page{}, f.err
	}

	before := len(f.events) + 1
	if token != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(token, "s"))
		if err != nil {
			return room.Page{}, err
		}
		before = n
	}
	start := fmt.Sprintf("s%d", before)
	page := room.Page{Start: start, End: start}
	first := before - 1
	if first > len(f.events) {
		first = len(f.events)
	}
	for seq := first; seq >= 1 && len(page.Events) < limit; seq-- {
		page.Events = append(page.Events, f.events[seq-1])
		page.End = fmt.Sprintf("s%d", seq)
	}
	return page, nil
}

func newTestTimeline(src room.Source, mutate ...func(*Options)) *Timeline {
	opts := Options{
		RoomID:   "!test:local",
		History:  testState(),
		Font:     pixelFont{},
		Location: time.UTC,
	}
	if src != nil {
		opts.Source = src
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	return New(opts)
}

// recompute sums block heights laid out from scratch by a separate engine.
func recompute(tl *Timeline, width int) int {
	engine := NewEngine(EngineOptions{Font: pixelFont{}, Location: time.UTC})
	spacing := engine.Metrics().Spacing
	total := 0
	tl.store.EachBlock(func(b *Block) {
		total += engine.Relayout(b, width) + spacing
	})
	return total
}

func oldestBatch(tl *Timeline) *Batch {
	b, _ := tl.store.batches.Front()
	return b
}

func batchIDs(b *Batch) []string {
	var ids []string
	for i := 0; i < b.Len(); i++ {
		for _, rec := range b.Block(i).Events {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

func recoverError(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	fn()
	return nil
}

type band struct {
	Rect textlayout.Rect
	Tone Tone
}

type text struct {
	Text   string
	Offset textlayout.Point
	Role   TextRole
}

type recordingCanvas struct {
	bands   []band
	avatars []textlayout.Point
	texts   []text
}

func (c *recordingCanvas) FillBand(r textlayout.Rect, tone Tone) {
	c.bands = append(c.bands, band{Rect: r, Tone: tone})
}

func (c *recordingCanvas) DrawAvatar(at textlayout.Point, size int, avatar *Avatar) {
	c.avatars = append(c.avatars, at)
}

func (c *recordingCanvas) DrawText(l *textlayout.Layout, offset textlayout.Point, role TextRole) {
	for _, line := range l.Lines() {
		c.texts = append(c.texts, text{Text: line.Text, Offset: offset, Role: role})
	}
}
