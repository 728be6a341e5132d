package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/rpc"
)

func newListCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the clipboard history, pinned entries first",
		Args:    cobra.NoArgs,
	}
	cmd.Flags().IntP("limit", "n", 0, "show at most this many entries (0 = all)")
	cmd.Flags().Bool("json", false, "output raw JSON")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		entries, err := c.List(ctx, v.GetInt("limit"))
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		return showEntries(cmd, v, entries)
	})
}

func newSearchCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Show entries containing text (case-insensitive)",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().IntP("limit", "n", 0, "show at most this many entries (0 = all)")
	cmd.Flags().Bool("json", false, "output raw JSON")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, args []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		entries, err := c.Search(ctx, strings.Join(args, " "), v.GetInt("limit"))
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		return showEntries(cmd, v, entries)
	})
}

func showEntries(cmd *cobra.Command, v *viper.Viper, entries []model.Entry) error {
	if v.GetBool("json") {
		if entries == nil {
			entries = []model.Entry{}
		}
		return printJSON(cmd.OutOrStdout(), entries)
	}
	return printEntries(cmd.OutOrStdout(), entries, time.Now())
}

func newPinCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "pin <#|id>",
		Short: "Pin or unpin an entry",
		Long: `Toggles the pinned flag of an entry. Pinned entries are listed first and
are never evicted when the history is full.

The entry is addressed by its position in "pastecopy list" or by (a prefix of)
its id.`,
		Args: cobra.ExactArgs(1),
	}
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, args []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		e, err := resolve(ctx, c, args[0])
		if err != nil {
			return err
		}
		updated, found, err := c.Pin(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("pin: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: %s", errNoMatch, e.ID)
		}
		state := "unpinned"
		if updated.Pinned {
			state = "pinned"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, updated)
		return nil
	})
}

func newDeleteCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     "delete <#|id>...",
		Aliases: []string{"rm"},
		Short:   "Remove entries from the history",
		Args:    cobra.MinimumNArgs(1),
	}
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, args []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		entries, err := c.List(ctx, 0)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		// Resolve every ref against one listing so positions do not shift
		// underneath later arguments.
		targets := make([]model.Entry, 0, len(args))
		for _, ref := range args {
			e, err := matchRef(entries, ref)
			if err != nil {
				return err
			}
			targets = append(targets, e)
		}
		for _, e := range targets {
			ok, err := c.Delete(ctx, e.ID)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			if ok {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", e)
			}
		}
		return nil
	})
}

func newClearCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every unpinned entry",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Bool("all", false, "remove pinned entries too")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		n, err := c.Clear(ctx, !v.GetBool("all"))
		if err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries\n", n)
		return nil
	})
}

func newPickCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "pick <#|id>",
		Short: "Put a history entry back on the clipboard",
		Args:  cobra.ExactArgs(1),
	}
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, args []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		e, err := resolve(ctx, c, args[0])
		if err != nil {
			return err
		}
		copied, found, err := c.Copy(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("pick: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: %s", errNoMatch, e.ID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %s\n", copied)
		return nil
	})
}

func resolve(ctx context.Context, c *rpc.Client, ref string) (model.Entry, error) {
	entries, err := c.List(ctx, 0)
	if err != nil {
		return model.Entry{}, fmt.Errorf("list: %w", err)
	}
	return matchRef(entries, ref)
}
