package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/tOgg1/roomview/internal/config"
	"github.com/tOgg1/roomview/internal/room"
)

// roomStore is what the commands need from a history backend.
type roomStore interface {
	room.Store
	Rooms(ctx context.Context) ([]room.RoomInfo, error)
}

var (
	_ roomStore = (*room.SQLiteStore)(nil)
	_ roomStore = (*room.RedisStore)(nil)
)

func openStore(ctx context.Context, cfg *config.Config) (roomStore, error) {
	switch cfg.Source.Kind {
	case config.SourceRedis:
		return room.OpenRedis(ctx, cfg.Source.RedisURL)
	case config.SourceSQLite, "":
		return room.OpenSQLite(ctx, room.SQLiteConfig{
			Path:          cfg.DatabasePath(),
			BusyTimeoutMs: cfg.Database.BusyTimeoutMs,
		})
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source.Kind)
	}
}

// resolveRoom finds the room named by ref, which is a room id or a room
// name. An empty ref falls back to the saved context.
func (rt *runtime) resolveRoom(ctx context.Context, store roomStore, ref string) (room.RoomInfo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = strings.TrimSpace(rt.roomFlag)
	}
	if ref == "" {
		saved, err := rt.contexts.Load()
		if err != nil {
			return room.RoomInfo{}, err
		}
		ref = saved.RoomID
	}
	if ref == "" {
		return room.RoomInfo{}, fmt.Errorf("no room selected; pass --room or run 'roomview join'")
	}

	rooms, err := store.Rooms(ctx)
	if err != nil {
		return room.RoomInfo{}, err
	}
	byID := room.ValidateRoomID(ref) == nil
	var matches []room.RoomInfo
	for _, info := range rooms {
		if (byID && info.ID == ref) || (!byID && strings.EqualFold(info.Name, ref)) {
			matches = append(matches, info)
		}
	}
	switch len(matches) {
	case 0:
		return room.RoomInfo{}, fmt.Errorf("%w: %s", room.ErrRoomNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return room.RoomInfo{}, fmt.Errorf("room name %q is ambiguous (%d rooms); use the room id", ref, len(matches))
	}
}

// resolveUser picks the acting user: --as, then the saved context, then
// tui.user from the config.
func (rt *runtime) resolveUser(as string) (string, error) {
	name := strings.TrimSpace(as)
	if name == "" {
		saved, err := rt.contexts.Load()
		if err != nil {
			return "", err
		}
		name = saved.UserID
	}
	if name == "" {
		name = rt.cfg.TUI.User
	}
	if name == "" {
		return "", fmt.Errorf("no user set; pass --as, set tui.user, or run 'roomview join --as NAME'")
	}
	id, err := room.NormalizeUserID(name, rt.cfg.Global.ServerName)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	return id, nil
}

// remember saves the room and user as the defaults for later commands.
func (rt *runtime) remember(info room.RoomInfo, userID string) error {
	saved, err := rt.contexts.Load()
	if err != nil {
		return err
	}
	if info.ID != "" {
		saved.SetRoom(info.ID, info.Name)
	}
	if userID != "" {
		saved.SetUser(userID)
	}
	return rt.contexts.Save(saved)
}
