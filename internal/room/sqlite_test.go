package room

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, err := OpenSQLite(context.Background(), SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "rooms.db"),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreContract(t *testing.T) {
	runStoreContract(t, openTestSQLite(t))
}

func TestSQLiteStoreFillsIDsAndTimestamps(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	roomID, err := store.CreateRoom(ctx, "@carol:example.org", "ops")
	require.NoError(t, err)
	require.Contains(t, roomID, ":example.org")

	ev := &Event{RoomID: roomID, Type: EventTypeMessage, Sender: "@carol:example.org", Body: "hi"}
	require.NoError(t, store.Append(ctx, ev))
	require.Len(t, ev.ID, 26)
	require.NotZero(t, ev.OriginServerTS)

	page, err := store.Room(roomID).Messages(ctx, Backward, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	require.Equal(t, ev.ID, page.Events[0].ID)
	require.Equal(t, ev.OriginServerTS, page.Events[0].OriginServerTS)

	rooms, err := store.Rooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "ops", rooms[0].Name)
	require.Equal(t, "@carol:example.org", rooms[0].Creator)
}

func TestSQLiteStoreReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "rooms.db")

	store, err := OpenSQLite(ctx, SQLiteConfig{Path: path})
	require.NoError(t, err)
	roomID, err := store.CreateRoom(ctx, "@alice:local", "persist")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer store.Close()

	page, err := store.Room(roomID).Messages(ctx, Forward, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), SQLiteConfig{Path: "  "})
	require.Error(t, err)
}
