package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/roomview/internal/room"
	"github.com/tOgg1/roomview/internal/timeline"
)

func (rt *runtime) newPostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post [MESSAGE]",
		Short: "Post a message to a room",
		Long:  "Post a message to the current room. Without an argument the message is read from piped stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			as, _ := cmd.Flags().GetString("as")
			userID, err := rt.resolveUser(as)
			if err != nil {
				return err
			}

			body := ""
			if len(args) > 0 {
				body = args[0]
			} else {
				body, err = readStdinIfPiped(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			body = strings.TrimRight(body, "\n")
			if strings.TrimSpace(body) == "" {
				return usageError(cmd, "message body is required")
			}

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := rt.resolveRoom(ctx, store, "")
			if err != nil {
				return err
			}
			ev := &room.Event{
				RoomID: info.ID,
				Type:   room.EventTypeMessage,
				Sender: userID,
				Body:   body,
			}
			if err := store.Append(ctx, ev); err != nil {
				return fmt.Errorf("post message: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ev.ID)
			return nil
		},
	}
	cmd.Flags().String("as", "", "user posting the message")
	return cmd
}

func readStdinIfPiped(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (rt *runtime) newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print one page of room history",
		Long:  "Print one page of room history, newest first. Pass the printed token to --from to continue.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			from, _ := cmd.Flags().GetString("from")
			forward, _ := cmd.Flags().GetBool("forward")
			jsonOutput, _ := cmd.Flags().GetBool("json")
			if limit <= 0 {
				limit = rt.cfg.Timeline.PageSize
			}
			dir := room.Backward
			if forward {
				dir = room.Forward
			}

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := rt.resolveRoom(ctx, store, "")
			if err != nil {
				return err
			}
			page, err := store.Room(info.ID).Messages(ctx, dir, strings.TrimSpace(from), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}

			if jsonOutput {
				payload, err := json.MarshalIndent(page, "", "  ")
				if err != nil {
					return fmt.Errorf("encode page: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}
			return rt.writePage(cmd, page)
		},
	}
	cmd.Flags().Int("limit", 0, "events to print (default timeline.page_size)")
	cmd.Flags().String("from", "", "pagination token to start from")
	cmd.Flags().Bool("forward", false, "walk from oldest to newest")
	cmd.Flags().Bool("json", false, "print the page as JSON")
	return cmd
}

func (rt *runtime) writePage(cmd *cobra.Command, page room.Page) error {
	out := cmd.OutOrStdout()
	if len(page.Events) == 0 {
		fmt.Fprintln(out, "No events.")
		return nil
	}
	loc, err := rt.cfg.Location()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(page.Events))
	for _, ev := range page.Events {
		text := strings.ReplaceAll(timeline.EventText(ev), "\n", " ⏎ ")
		rows = append(rows, []string{
			ev.Time().In(loc).Format("2006-01-02 15:04"),
			ev.Sender,
			text,
		})
	}
	if err := writeTable(out, []string{"TIME", "SENDER", "EVENT"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "next: %s\n", page.End)
	return nil
}
