package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nilsbenson/witsml-server/internal/engine"
	"github.com/nilsbenson/witsml-server/internal/engineconfig"
)

// newConfigCmd returns the "config" command group, for inspecting and
// tuning the engine's persisted configuration without standing up a full
// server.
func newConfigCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the engine configuration",
	}
	cmd.AddCommand(newConfigShowCmd(logger), newConfigSetCmd(logger))
	return cmd
}

func newConfigShowCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective engine configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString("home")
			eng, err := engine.OpenBolt(cmd.Context(), home, logger)
			if err != nil {
				return fmt.Errorf("open engine at %s: %w", home, err)
			}
			defer eng.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(eng.Config())
		},
	}
}

func newConfigSetCmd(logger *slog.Logger) *cobra.Command {
	var depthRangeSize, timeRangeSize float64
	var maxDataNodes, maxDataPoints int
	var streamPairs bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite the engine's tuning parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := cmd.Flags().GetString("home")
			ctx := context.Background()

			eng, err := engine.OpenBolt(ctx, home, logger)
			if err != nil {
				return fmt.Errorf("open engine at %s: %w", home, err)
			}
			defer eng.Close()

			cfg := engineconfig.Config{
				DepthRangeSize:        depthRangeSize,
				TimeRangeSize:         timeRangeSize,
				StreamIndexValuePairs: streamPairs,
				MaxDataNodes:          maxDataNodes,
				MaxDataPoints:         maxDataPoints,
			}
			return eng.Reconfigure(ctx, cfg)
		},
	}

	defaults := engineconfig.Default()
	cmd.Flags().Float64Var(&depthRangeSize, "depth-range-size", defaults.DepthRangeSize, "chunk extent size for depth-indexed logs")
	cmd.Flags().Float64Var(&timeRangeSize, "time-range-size", defaults.TimeRangeSize, "chunk extent size, in seconds, for time-indexed logs")
	cmd.Flags().BoolVar(&streamPairs, "stream-index-value-pairs", defaults.StreamIndexValuePairs, "encode query rows as explicit [index, value...] pairs")
	cmd.Flags().IntVar(&maxDataNodes, "max-data-nodes", defaults.MaxDataNodes, "maximum mnemonic columns per query response")
	cmd.Flags().IntVar(&maxDataPoints, "max-data-points", defaults.MaxDataPoints, "maximum rows per query response")
	return cmd
}
