package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastecopy/internal/ipc"
	"go.klb.dev/pastecopy/internal/rpc"
)

const callTimeout = 5 * time.Second

// clientCmd builds a command that talks to the running daemon. run receives
// a connected client; the connection is closed afterwards.
func clientCmd(cmd *cobra.Command, v *viper.Viper, run func(ctx context.Context, c *rpc.Client, args []string) error) *cobra.Command {
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) }
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := dialDaemon(v, "pastecopy "+cmd.Name())
		if err != nil {
			return err
		}
		defer c.Close()
		return run(cmd.Context(), c, args)
	}
	addSocketFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

// dialDaemon connects to the daemon's IPC socket.
func dialDaemon(v *viper.Viper, source string) (*rpc.Client, error) {
	path := socketPath(v)
	if !ipc.IsRunning(path) {
		return nil, fmt.Errorf("no pastecopy daemon on %s (start one with \"pastecopy daemon\")", path)
	}
	return rpc.Dial(path, source)
}

// call bounds a single unary RPC.
func call(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, callTimeout)
}
