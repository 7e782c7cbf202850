package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/veldhoen/tapster/internal/cli"
	"github.com/veldhoen/tapster/internal/model"
	"github.com/veldhoen/tapster/internal/service"
)

func enrichCmd() *cobra.Command {
	var (
		ordersDir  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "enrich [file]",
		Short: "Enrich order line items with categories",
		Long: `Enrich reads one or more orders as JSON, categorizes every line item
and prints the enriched orders with their summaries. Each processed order
is also recorded into the rolling analytics log.

The input file may contain a single order object or an array of orders.
With no file argument the order is read from stdin. With --dir every
*.json file in the directory is processed as a batch.`,
		Example: `  tapster enrich order.json
  cat order.json | tapster enrich
  tapster enrich --dir ./orders --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			enricher, _, store, err := buildEnricher(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					slog.Warn("Failed to close analytics store", "error", cerr)
				}
			}()

			orders, err := readOrders(args, ordersDir, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				return fmt.Errorf("no orders to enrich")
			}

			var bar *progressbar.ProgressBar
			if len(orders) > 1 && !jsonOutput {
				bar = newBatchProgressBar(cmd.ErrOrStderr(), len(orders))
			}

			start := time.Now()
			stats := service.EnrichmentStats{Orders: len(orders)}
			enriched := make([]model.EnrichedOrder, 0, len(orders))
			for _, order := range orders {
				result, err := enricher.EnrichOrder(ctx, order)
				if err != nil {
					return fmt.Errorf("failed to enrich order %q: %w", order.ID, err)
				}
				enriched = append(enriched, result)
				stats.Items += result.Summary.TotalItems
				stats.LowConfidence += result.Summary.LowConfidenceItems
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			stats.Duration = time.Since(start)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if len(enriched) == 1 {
					return enc.Encode(enriched[0])
				}
				return enc.Encode(enriched)
			}

			for _, order := range enriched {
				renderEnrichedOrder(cmd.OutOrStdout(), order)
			}
			if stats.Orders > 1 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf(
					"✓ Enriched %d orders (%d items, %d low confidence) in %s",
					stats.Orders, stats.Items, stats.LowConfidence, stats.Duration.Round(time.Millisecond))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ordersDir, "dir", "", "directory of order JSON files to process as a batch")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit enriched orders as JSON")

	return cmd
}

// readOrders loads orders from the positional file, a directory, or stdin.
func readOrders(args []string, dir string, stdin io.Reader) ([]model.Order, error) {
	if dir != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot combine --dir with a file argument")
		}
		return readOrdersDir(dir)
	}

	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read orders file: %w", err)
		}
	} else {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read orders from stdin: %w", err)
		}
	}
	return decodeOrders(data)
}

func readOrdersDir(dir string) ([]model.Order, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var orders []model.Order
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		decoded, err := decodeOrders(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		orders = append(orders, decoded...)
	}
	return orders, nil
}

// decodeOrders accepts either a single order object or an array of orders.
func decodeOrders(data []byte) ([]model.Order, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var orders []model.Order
		if err := json.Unmarshal(data, &orders); err != nil {
			return nil, fmt.Errorf("failed to parse orders: %w", err)
		}
		return orders, nil
	}

	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order: %w", err)
	}
	return []model.Order{order}, nil
}

func newBatchProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Enriching orders...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func renderEnrichedOrder(w io.Writer, order model.EnrichedOrder) {
	fmt.Fprintln(w, cli.TitleStyle.Render(fmt.Sprintf("Order %s", order.ID)))
	for _, item := range order.Items {
		confidence := cli.ConfidenceStyle(item.Confidence).Render(fmt.Sprintf("%.2f", item.Confidence))
		fmt.Fprintf(w, "  %-40s %s (%s) %s %s\n",
			item.Name,
			item.CategoryName,
			item.CategoryCode,
			cli.InfoStyle.Render(string(item.MatchType)),
			confidence,
		)
	}

	s := order.Summary
	rate := s.ConfidenceRate()
	rateText := cli.ConfidenceStyle(rate).Render(fmt.Sprintf("%.0f%%", rate*100))
	fmt.Fprintf(w, "  %s %d items, %d categories, %s confident\n\n",
		cli.SubtleStyle.Render("Summary:"),
		s.TotalItems,
		len(s.CategoryCounts),
		rateText,
	)
}
