// Package room defines the chat history model consumed by the timeline and
// the stores that serve it.
package room

import (
	"context"
	"errors"
	"time"
)

// Event types understood by the timeline.
const (
	EventTypeCreate  = "m.room.create"
	EventTypeMember  = "m.room.member"
	EventTypeMessage = "m.room.message"
)

// Membership values.
const (
	MembershipJoin  = "join"
	MembershipLeave = "leave"
)

// DefaultPageSize is the number of events requested per backlog page.
const DefaultPageSize = 100

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrInvalidEvent = errors.New("invalid event")
	ErrInvalidToken = errors.New("invalid pagination token")
)

// MemberContent is the payload of a membership event.
type MemberContent struct {
	Membership  string `json:"membership"`
	DisplayName string `json:"displayname,omitempty"`
}

// Event is one entry of a room's history.
type Event struct {
	ID             string         `json:"event_id"`
	RoomID         string         `json:"room_id"`
	Type           string         `json:"type"`
	Sender         string         `json:"sender"`
	StateKey       string         `json:"state_key,omitempty"`
	OriginServerTS int64          `json:"origin_server_ts"`
	Body           string         `json:"body,omitempty"`
	Member         *MemberContent `json:"member,omitempty"`
	PrevMember     *MemberContent `json:"prev_member,omitempty"`
}

// Time converts the server timestamp to a wall clock instant.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.OriginServerTS)
}

// IsCreate reports whether the event marks the beginning of the room.
func (e Event) IsCreate() bool {
	return e.Type == EventTypeCreate
}

// Target is the user a membership event applies to.
func (e Event) Target() string {
	if e.StateKey != "" {
		return e.StateKey
	}
	return e.Sender
}

// Direction selects which way a page walks from its token.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Page is one response of a paginated history request. Backward pages list
// events newest first, forward pages oldest first. End is the token to
// continue in the same direction.
type Page struct {
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Events []Event `json:"chunk"`
}

// Source serves paginated room history.
type Source interface {
	// Messages returns up to limit events walking dir from token. An empty
	// token starts at the live edge for Backward and at the beginning of the
	// room for Forward.
	Messages(ctx context.Context, dir Direction, token string, limit int) (Page, error)
}

// Room is a Source that can also report the current membership state.
type Room interface {
	Source
	ID() string
	State(ctx context.Context) (*State, error)
}

// Store persists rooms and their events.
type Store interface {
	CreateRoom(ctx context.Context, creator, name string) (string, error)
	Append(ctx context.Context, ev *Event) error
	Room(id string) Room
	Close() error
}
