package timeline

import (
	"strings"
	"time"

	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/textlayout"
)

// EventRecord is one message ready for layout: its timestamp and one wrapped
// layout per newline separated segment of the body. Records are owned by a
// single Block and never change after creation except for line positions.
type EventRecord struct {
	ID    string
	Time  time.Time
	Lines []*textlayout.Layout
}

func newEventRecord(font textlayout.Font, ev room.Event) *EventRecord {
	segments := strings.Split(EventText(ev), "\n")
	lines := make([]*textlayout.Layout, len(segments))
	for i, segment := range segments {
		lines[i] = textlayout.New(font, segment, textlayout.Options{
			Align: textlayout.AlignLeft,
			Wrap:  textlayout.WrapWordOrAnywhere,
		})
	}
	return &EventRecord{
		ID:    ev.ID,
		Time:  ev.Time(),
		Lines: lines,
	}
}

// EventText is the text shown for ev. State events without a body get a
// short description.
func EventText(ev room.Event) string {
	switch ev.Type {
	case room.EventTypeCreate:
		if ev.Body != "" {
			return "created the room \"" + ev.Body + "\""
		}
		return "created the room"
	case room.EventTypeMember:
		return describeMembership(ev)
	default:
		return ev.Body
	}
}

func describeMembership(ev room.Event) string {
	if ev.Member == nil {
		return ev.Body
	}
	target := ev.Target()
	switch ev.Member.Membership {
	case room.MembershipLeave:
		if target != ev.Sender {
			return "removed " + target
		}
		return "left the room"
	case room.MembershipJoin:
		prev := ev.PrevMember
		if prev != nil && prev.Membership == room.MembershipJoin {
			if prev.DisplayName != ev.Member.DisplayName {
				return "changed their name to " + ev.Member.DisplayName
			}
			return "updated their profile"
		}
		return "joined the room"
	default:
		return ev.Member.Membership
	}
}
