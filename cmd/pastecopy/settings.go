package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/rpc"
)

func newConfigCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the history preferences",
		Long: `Shows the preferences stored alongside the history (app_config.json).
Use "pastecopy config set" to change them.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().Bool("json", false, "output raw JSON")
	cmd = clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		cfg, err := c.Config(ctx)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if v.GetBool("json") {
			return printJSON(cmd.OutOrStdout(), cfg)
		}
		return printConfig(cmd, cfg)
	})
	cmd.AddCommand(newConfigSetCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change history preferences",
		Long: `Changes only the preferences named by flags. Lowering --max-items evicts the
oldest unpinned entries immediately.

  pastecopy config set --max-items 200
  pastecopy config set --max-items unlimited --activation icon`,
		Args: cobra.NoArgs,
	}
	f := cmd.Flags()
	f.String("activation", "", "how the history window opens: shortcut|icon|both")
	f.String("max-items", "", `maximum unpinned entries, or "unlimited"`)
	f.Bool("quick-search", true, "enable the search box in the history window")
	return clientCmd(cmd, v, func(ctx context.Context, c *rpc.Client, _ []string) error {
		ctx, cancel := call(ctx)
		defer cancel()
		cfg, err := c.Config(ctx)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg, err = applyConfigFlags(cmd, cfg); err != nil {
			return err
		}
		stored, err := c.UpdateConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("config set: %w", err)
		}
		return printConfig(cmd, stored)
	})
}

// applyConfigFlags overlays the flags the user actually set onto cfg.
func applyConfigFlags(cmd *cobra.Command, cfg model.AppConfig) (model.AppConfig, error) {
	f := cmd.Flags()
	if f.Changed("activation") {
		s, _ := f.GetString("activation")
		m, err := model.ParseActivationMode(s)
		if err != nil {
			return cfg, err
		}
		cfg.ActivationMode = m
	}
	if f.Changed("max-items") {
		s, _ := f.GetString("max-items")
		l, err := model.ParseHistoryLimit(s)
		if err != nil {
			return cfg, err
		}
		cfg.MaxHistoryItems = l
	}
	if f.Changed("quick-search") {
		cfg.EnableQuickSearch, _ = f.GetBool("quick-search")
	}
	return cfg, nil
}

func printConfig(cmd *cobra.Command, cfg model.AppConfig) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Activation:\t%s\n", cfg.ActivationMode)
	fmt.Fprintf(tw, "Max items:\t%s\n", cfg.MaxHistoryItems)
	fmt.Fprintf(tw, "Quick search:\t%t\n", cfg.EnableQuickSearch)
	return tw.Flush()
}
