package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastecopy/internal/rpc"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's state",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Bool("json", false, "output raw JSON")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		st, err := c.Status(ctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		if v.GetBool("json") {
			return printJSON(cmd.OutOrStdout(), st)
		}
		return printStatus(cmd, st, socketPath(v))
	})
}

func printStatus(cmd *cobra.Command, st *rpc.StatusResponse, socket string) error {
	state := "stopped"
	if st.Status.Running {
		state = "running"
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Daemon:\t%s (pid %d)\n", st.Version, st.PID)
	fmt.Fprintf(tw, "Socket:\t%s\n", socket)
	fmt.Fprintf(tw, "Monitor:\t%s, every %s\n", state, st.Status.PollInterval)
	fmt.Fprintf(tw, "Clipboard:\t%s\n", st.Status.Backend)
	fmt.Fprintf(tw, "Store:\t%s\n", st.Store)
	fmt.Fprintf(tw, "History:\t%d entries (%d pinned), limit %s\n",
		st.Status.Entries, st.Status.Pinned, st.Status.Config.MaxHistoryItems)
	if !st.Status.LastChange.IsZero() {
		fmt.Fprintf(tw, "Last change:\t%s\n", humanize.RelTime(st.Status.LastChange, time.Now(), "ago", "from now"))
	}
	return tw.Flush()
}
