package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/rpc"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "copy [text]",
		Short: "Copy text or stdin to the clipboard (like pbcopy)",
		Long: `Writes the arguments, or stdin when there are none, to the system clipboard
through the daemon and records it in the history.`,
	}
	cmd.Flags().Bool("trim", false, "strip one trailing newline from stdin")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, args []string) error {
		var text string
		if len(args) > 0 {
			text = strings.Join(args, " ")
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = string(data)
			if v.GetBool("trim") {
				text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
			}
		}
		if text == "" {
			return nil
		}

		ctx, cancel := call(ctx)
		defer cancel()
		if _, err := c.CopyText(ctx, text); err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		return nil
	})
}

func newPasteCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the clipboard to stdout (like pbpaste)",
		Args:  cobra.NoArgs,
	}
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		text, err := c.Paste(ctx)
		if err != nil {
			return fmt.Errorf("paste: %w", err)
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	})
}

func newWatchCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the newest entry every time the history changes",
		Long: `Streams history updates from the daemon until interrupted. Each line is the
most recent entry; with --json the full history is printed as one JSON array
per update.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Bool("json", false, "print the full history as JSON on every change")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		var last string
		err := c.Watch(ctx, func(entries []model.Entry) error {
			if v.GetBool("json") {
				return printJSON(out, entries)
			}
			newest, ok := newestEntry(entries)
			if !ok || newest.ID == last {
				return nil
			}
			last = newest.ID
			_, err := fmt.Fprintln(out, newest.Preview(previewLen))
			return err
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
}

// newestEntry returns the entry with the greatest timestamp, which is not
// necessarily the first one listed when entries are pinned.
func newestEntry(entries []model.Entry) (model.Entry, bool) {
	if len(entries) == 0 {
		return model.Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Timestamp > best.Timestamp {
			best = e
		}
	}
	return best, true
}
