package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/veldhoen/tapster/internal/cli"
	"github.com/veldhoen/tapster/internal/model"
)

func analyticsCmd() *cobra.Command {
	var (
		refresh    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the rolling categorization analytics snapshot",
		Long: `Analytics recomputes its snapshot from the rolling log of recent order
summaries. With --refresh the log is reloaded from storage first, which
picks up orders recorded by other processes.`,
		Example: `  tapster analytics
  tapster analytics --refresh --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			agg, store, err := buildAggregator(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					slog.Warn("Failed to close analytics store", "error", cerr)
				}
			}()

			if refresh {
				if err := agg.Refresh(ctx); err != nil {
					return fmt.Errorf("failed to refresh analytics: %w", err)
				}
			}

			snapshot := agg.Compute()

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshot)
			}

			renderSnapshot(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the rolling log from storage before computing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the snapshot as JSON")

	return cmd
}

func renderSnapshot(w io.Writer, snapshot model.AnalyticsSnapshot) {
	fmt.Fprintln(w, cli.TitleStyle.Render("Categorization analytics"))

	fmt.Fprintf(w, "  %s %d orders, %d items\n",
		cli.SubtleStyle.Render("Volume:"),
		snapshot.TotalOrders,
		snapshot.TotalItems,
	)

	rate := cli.ConfidenceStyle(snapshot.AvgConfidenceRate).Render(
		fmt.Sprintf("%.0f%%", snapshot.AvgConfidenceRate*100))
	fmt.Fprintf(w, "  %s %s\n", cli.SubtleStyle.Render("Avg confidence:"), rate)

	if len(snapshot.TopCategories) > 0 {
		fmt.Fprintln(w, cli.HeaderStyle.Render("  Top categories"))
		for _, cat := range snapshot.TopCategories {
			fmt.Fprintf(w, "    %-24s (%s) %d items\n", cat.CategoryName, cat.CategoryCode, cat.Count)
		}
	}

	if len(snapshot.MatchTypeTotals) > 0 {
		fmt.Fprintln(w, cli.HeaderStyle.Render("  Match types"))
		for _, mt := range model.MatchTypes {
			if count, ok := snapshot.MatchTypeTotals[mt]; ok {
				fmt.Fprintf(w, "    %-12s %d\n", mt, count)
			}
		}
	}
}
