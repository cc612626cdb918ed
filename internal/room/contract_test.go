package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the paging and membership behavior every Store
// must share.
func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	roomID, err := store.CreateRoom(ctx, "@alice:local", "general")
	require.NoError(t, err)
	require.NoError(t, ValidateRoomID(roomID))

	for _, body := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, store.Append(ctx, &Event{
			RoomID: roomID,
			Type:   EventTypeMessage,
			Sender: "@alice:local",
			Body:   body,
		}))
	}
	r := store.Room(roomID)
	require.Equal(t, roomID, r.ID())

	t.Run("backward pages walk to the create event", func(t *testing.T) {
		page, err := r.Messages(ctx, Backward, "", 3)
		require.NoError(t, err)
		require.Equal(t, []string{"five", "four", "three"}, bodies(page.Events))
		require.Equal(t, "s8", page.Start)
		require.Equal(t, "s5", page.End)

		page, err = r.Messages(ctx, Backward, page.End, 3)
		require.NoError(t, err)
		require.Equal(t, []string{"two", "one", ""}, bodies(page.Events))
		require.Equal(t, EventTypeMember, page.Events[2].Type)
		require.Equal(t, "s2", page.End)

		page, err = r.Messages(ctx, Backward, page.End, 3)
		require.NoError(t, err)
		require.Len(t, page.Events, 1)
		require.True(t, page.Events[0].IsCreate())
		require.Equal(t, "general", page.Events[0].Body)
		require.Equal(t, "s1", page.End)

		page, err = r.Messages(ctx, Backward, page.End, 3)
		require.NoError(t, err)
		require.Empty(t, page.Events)
		require.Equal(t, "s1", page.Start)
		require.Equal(t, "s1", page.End)
	})

	t.Run("forward pages start at the beginning", func(t *testing.T) {
		page, err := r.Messages(ctx, Forward, "", 3)
		require.NoError(t, err)
		require.Len(t, page.Events, 3)
		require.True(t, page.Events[0].IsCreate())
		require.Equal(t, "s0", page.Start)
		require.Equal(t, "s4", page.End)

		page, err = r.Messages(ctx, Forward, "s8", 3)
		require.NoError(t, err)
		require.Empty(t, page.Events)
		require.Equal(t, "s8", page.End)
	})

	t.Run("membership records previous content", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, &Event{
			RoomID: roomID,
			Type:   EventTypeMember,
			Sender: "@bob:local",
			Member: &MemberContent{Membership: MembershipJoin, DisplayName: "bob"},
		}))
		require.NoError(t, store.Append(ctx, &Event{
			RoomID: roomID,
			Type:   EventTypeMember,
			Sender: "@bob:local",
			Member: &MemberContent{Membership: MembershipJoin, DisplayName: "Robert"},
		}))

		state, err := r.State(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, state.Len())
		bob, ok := state.Member("@bob:local")
		require.True(t, ok)
		require.Equal(t, "Robert", state.MemberName(bob))

		page, err := r.Messages(ctx, Backward, "", 2)
		require.NoError(t, err)
		require.Len(t, page.Events, 2)
		rename, join := page.Events[0], page.Events[1]
		require.Nil(t, join.PrevMember)
		require.NotNil(t, rename.PrevMember)
		require.Equal(t, "bob", rename.PrevMember.DisplayName)

		state.Revert(rename)
		bob, _ = state.Member("@bob:local")
		require.Equal(t, "bob", bob.DisplayName)
		state.Revert(join)
		_, ok = state.Member("@bob:local")
		require.False(t, ok)
	})

	t.Run("unknown room and bad input", func(t *testing.T) {
		err := store.Append(ctx, &Event{RoomID: "!missing:local", Type: EventTypeMessage, Sender: "@alice:local"})
		require.ErrorIs(t, err, ErrRoomNotFound)

		err = store.Append(ctx, &Event{RoomID: roomID, Type: EventTypeMessage, Sender: "alice"})
		require.ErrorIs(t, err, ErrInvalidEvent)

		_, err = r.Messages(ctx, Backward, "bogus", 10)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func bodies(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Body)
	}
	return out
}
