// pastecopy: clipboard history daemon and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/pastecopy/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pastecopy",
		Short: "Clipboard history manager",
		Long: `pastecopy records everything you copy into a searchable history.

Run "pastecopy daemon" once per login session. It polls the system clipboard,
keeps the history on disk, and listens on a local socket. Every other command
talks to that daemon.

Config file search order (first found wins):
  /etc/pastecopy/pastecopy.toml
  $HOME/.config/pastecopy/pastecopy.toml
  path supplied via --config

All flags can be set via PASTECOPY_<FLAG> env vars or config-file keys.
See "pastecopy daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newListCmd(),
		newSearchCmd(),
		newPinCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newPickCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newWatchCmd(),
		newConfigCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pastecopy %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
