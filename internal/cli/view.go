package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/roomview/internal/logging"
	"github.com/tOgg1/roomview/internal/timeline"
	"github.com/tOgg1/roomview/internal/tui"
)

func (rt *runtime) newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [ROOM]",
		Short: "Open a room's timeline",
		Long:  "Open a full-screen timeline of a room. Older history loads as you scroll up; new messages appear at the bottom.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  rt.runView,
	}
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while viewing")
	cmd.Flags().String("merge", "", "group consecutive events by sender: never or consecutive")
	cmd.Flags().Int("page-size", 0, "events per backlog request")
	return cmd
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func (rt *runtime) runView(cmd *cobra.Command, args []string) error {
	if !hasTTY() {
		return fmt.Errorf("view requires an interactive terminal; use 'roomview log' to print history")
	}
	ctx := cmd.Context()
	cfg := rt.cfg

	mergeValue := cfg.Timeline.Merge
	if value, _ := cmd.Flags().GetString("merge"); strings.TrimSpace(value) != "" {
		mergeValue = value
	}
	switch mergeValue {
	case timeline.MergeNever.String(), timeline.MergeConsecutive.String():
	default:
		return usageError(cmd, "invalid --merge %q: want never or consecutive", mergeValue)
	}
	merge := timeline.ParseMergePolicy(mergeValue)
	pageSize := cfg.Timeline.PageSize
	if value, _ := cmd.Flags().GetInt("page-size"); value > 0 {
		pageSize = value
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
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

	metricsAddr := cfg.Metrics.Addr
	if value, _ := cmd.Flags().GetString("metrics-addr"); strings.TrimSpace(value) != "" {
		metricsAddr = value
	}
	if metricsAddr != "" {
		stopMetrics := serveMetrics(metricsAddr)
		defer stopMetrics()
	}

	return tui.Run(ctx, tui.Config{
		Room:         store.Room(info.ID),
		RoomName:     info.Name,
		Theme:        cfg.TUI.Theme,
		PageSize:     pageSize,
		Merge:        merge,
		BlockMargin:  cfg.Timeline.BlockMargin,
		BlockSpacing: cfg.Timeline.BlockSpacing,
		SingleStep:   cfg.Timeline.SingleStep,
		Location:     loc,
		PollInterval: cfg.TUI.RefreshInterval,
	})
}

// serveMetrics exposes /metrics in the background and returns a function
// that shuts the server down.
func serveMetrics(addr string) func() {
	logger := logging.Component("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
