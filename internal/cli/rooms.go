package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/roomview/internal/room"
)

func (rt *runtime) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			as, _ := cmd.Flags().GetString("as")
			userID, err := rt.resolveUser(as)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if name == "" {
				return usageError(cmd, "room name is required")
			}

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.CreateRoom(ctx, userID, name)
			if err != nil {
				return fmt.Errorf("create room: %w", err)
			}
			if err := rt.remember(room.RoomInfo{ID: id, Name: name}, userID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().String("as", "", "user creating the room")
	return cmd
}

func (rt *runtime) newJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [ROOM]",
		Short: "Join a room and make it the default",
		Long:  "Join a room as a user, optionally with a display name. The room and user become the defaults for later commands.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			as, _ := cmd.Flags().GetString("as")
			displayName, _ := cmd.Flags().GetString("name")
			userID, err := rt.resolveUser(as)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			info, err := rt.resolveRoom(ctx, store, ref)
			if err != nil {
				return err
			}

			state, err := store.Room(info.ID).State(ctx)
			if err != nil {
				return err
			}
			current, joined := state.Member(userID)
			displayName = strings.TrimSpace(displayName)
			if !joined || (displayName != "" && displayName != current.DisplayName) {
				if displayName == "" {
					displayName = strings.SplitN(strings.TrimPrefix(userID, "@"), ":", 2)[0]
				}
				ev := &room.Event{
					RoomID: info.ID,
					Type:   room.EventTypeMember,
					Sender: userID,
					Member: &room.MemberContent{Membership: room.MembershipJoin, DisplayName: displayName},
				}
				if err := store.Append(ctx, ev); err != nil {
					return fmt.Errorf("join room: %w", err)
				}
			}

			if err := rt.remember(info, userID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s joined %s\n", userID, roomLabel(info))
			return nil
		},
	}
	cmd.Flags().String("as", "", "user joining the room")
	cmd.Flags().String("name", "", "display name in the room")
	return cmd
}

func (rt *runtime) newLeaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave [ROOM]",
		Short: "Leave a room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			as, _ := cmd.Flags().GetString("as")
			userID, err := rt.resolveUser(as)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			info, err := rt.resolveRoom(ctx, store, ref)
			if err != nil {
				return err
			}
			ev := &room.Event{
				RoomID: info.ID,
				Type:   room.EventTypeMember,
				Sender: userID,
				Member: &room.MemberContent{Membership: room.MembershipLeave},
			}
			if err := store.Append(ctx, ev); err != nil {
				return fmt.Errorf("leave room: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s left %s\n", userID, roomLabel(info))
			return nil
		},
	}
	cmd.Flags().String("as", "", "user leaving the room")
	return cmd
}

func (rt *runtime) newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			rooms, err := store.Rooms(ctx)
			if err != nil {
				return err
			}
			if len(rooms) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rooms yet. Create one with 'roomview create NAME'.")
				return nil
			}

			rows := make([][]string, 0, len(rooms))
			for _, info := range rooms {
				rows = append(rows, []string{
					info.Name,
					info.ID,
					info.Creator,
					info.CreatedAt.Local().Format(time.DateTime),
				})
			}
			return writeTable(cmd.OutOrStdout(), []string{"NAME", "ID", "CREATOR", "CREATED"}, rows)
		},
	}
}

func (rt *runtime) newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show or clear the default room and user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if forget, _ := cmd.Flags().GetBool("clear"); forget {
				return rt.contexts.Clear()
			}
			saved, err := rt.contexts.Load()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.String())
			return nil
		},
	}
	cmd.Flags().Bool("clear", false, "forget the saved room and user")
	return cmd
}

func roomLabel(info room.RoomInfo) string {
	if info.Name == "" {
		return info.ID
	}
	return fmt.Sprintf("%s (%s)", info.Name, info.ID)
}
