// Package cli implements the roomview command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/roomview/internal/config"
	"github.com/tOgg1/roomview/internal/logging"
)

// runtime is the state shared by all commands of one invocation.
type runtime struct {
	version string

	configFile string
	roomFlag   string
	sourceFlag string
	logLevel   string

	cfg      *config.Config
	contexts *config.ContextStore
	logFile  io.Closer
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(version).ExecuteContext(ctx)
}

func newRootCmd(version string) *cobra.Command {
	rt := &runtime{version: version}

	cmd := &cobra.Command{
		Use:           "roomview",
		Short:         "Browse chat room history in the terminal",
		Long:          "roomview stores chat rooms and shows their history as a scrollable timeline that loads older messages on demand.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rt.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/roomview/config.yaml)")
	flags.StringVar(&rt.roomFlag, "room", "", "room id or name (default: the room from 'roomview join')")
	flags.StringVar(&rt.sourceFlag, "source", "", "history source: sqlite or redis")
	flags.StringVar(&rt.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(
		rt.newViewCmd(),
		rt.newCreateCmd(),
		rt.newJoinCmd(),
		rt.newLeaveCmd(),
		rt.newPostCmd(),
		rt.newLogCmd(),
		rt.newRoomsCmd(),
		rt.newContextCmd(),
	)
	return cmd
}

// setup loads configuration and starts logging. The viewer owns the
// terminal, so it logs to the configured file or nowhere.
func (rt *runtime) setup(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if rt.configFile != "" {
		loader.SetConfigFile(rt.configFile)
	}
	if rt.sourceFlag != "" {
		loader.Set("source.kind", strings.ToLower(strings.TrimSpace(rt.sourceFlag)))
	}
	if rt.logLevel != "" {
		loader.Set("logging.level", rt.logLevel)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	rt.cfg = cfg
	rt.contexts = config.NewContextStore(cfg.ContextPath())

	var output io.Writer = cmd.ErrOrStderr()
	switch {
	case cfg.Logging.File != "":
		f, err := logging.OpenFile(cfg.Logging.File)
		if err != nil {
			return err
		}
		rt.logFile = f
		output = f
	case cmd.Name() == "view":
		output = io.Discard
	}
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       output,
		EnableCaller: cfg.Logging.EnableCaller,
	})

	logging.Logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("config", loader.ConfigFileUsed()).
		Str("source", cfg.Source.Kind).
		Msg("configuration loaded")
	return nil
}

func (rt *runtime) teardown() error {
	if rt.logFile == nil {
		return nil
	}
	err := rt.logFile.Close()
	rt.logFile = nil
	return err
}

func usageError(cmd *cobra.Command, format string, args ...any) error {
	return fmt.Errorf("%s\nRun '%s --help' for usage", fmt.Sprintf(format, args...), cmd.CommandPath())
}
